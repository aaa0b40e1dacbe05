package mcp

import (
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer produces grounded answers.
	Answer driving.AnswerService

	// Index is searched directly by the search tool.
	Index driving.VectorIndex

	// Ingest adds files to the index. Optional.
	Ingest driving.IngestService

	// Stats reports counts for the count tool and stats resource. Optional.
	Stats driving.IndexService

	// Session tracks files ingested while the server runs.
	Session driving.ProcessedSet
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Index == nil {
		return ErrMissingIndex
	}
	return nil
}
