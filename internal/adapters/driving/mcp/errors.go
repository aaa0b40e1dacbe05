// Package mcp provides an MCP (Model Context Protocol) server adapter for semsearch.
// It lets AI assistants ask questions against, search and grow the local document index.
package mcp

import "errors"

var (
	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("mcp: answer service is required")

	// ErrMissingIndex is returned when the vector index is not provided.
	ErrMissingIndex = errors.New("mcp: vector index is required")

	// ErrIngestDisabled is returned by the ingest tool when no ingest service is configured.
	ErrIngestDisabled = errors.New("mcp: ingest is not available")
)
