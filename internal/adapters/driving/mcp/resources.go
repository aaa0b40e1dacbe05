package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for semsearch resources.
	uriScheme = "semsearch://"

	// StatsURI identifies the index statistics resource.
	StatsURI = uriScheme + "stats"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         StatsURI,
		Name:        "stats",
		Description: "Chunk and file counts plus the embedding model of the index",
		MIMEType:    "application/json",
	}, s.handleStatsResource)
}

type statsInfo struct {
	Chunks     int      `json:"chunks"`
	Files      int      `json:"files"`
	Model      string   `json:"model,omitempty"`
	Dimensions int      `json:"dimensions,omitempty"`
	Processed  []string `json:"processed"`
}

// handleStatsResource returns the index statistics as JSON.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := s.stats(ctx)
	info := statsInfo{
		Chunks:     stats.Chunks,
		Files:      stats.Files,
		Model:      stats.Model,
		Dimensions: stats.Dimensions,
		Processed:  []string{},
	}
	if s.ports.Session != nil && s.ports.Session.Len() > 0 {
		info.Processed = s.ports.Session.Processed()
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
