package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/FamilOrujov/semsearch/internal/connectors/filesystem"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/services"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Grounded bool     `json:"grounded"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar passages for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default 4)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Paths []string `json:"paths" jsonschema:"files or directories on the server's filesystem to index"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Files            []string          `json:"files"`
	Chunks           int               `json:"chunks"`
	AlreadyProcessed []string          `json:"already_processed,omitempty"`
	Unsupported      []string          `json:"unsupported,omitempty"`
	Failed           map[string]string `json:"failed,omitempty"`
}

// CountInput is the (empty) input schema for the count tool.
type CountInput struct{}

// CountOutput is the output schema for the count tool.
type CountOutput struct {
	Chunks int `json:"chunks"`
	Files  int `json:"files"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the indexed documents",
	}, s.handleAsk)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Find the indexed passages most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ingest",
		Description: "Index PDF, TXT and DOCX files from local paths",
	}, s.handleIngest)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "count",
		Description: "Report how many chunks are indexed",
	}, s.handleCount)
}

// handleAsk answers a question and collects the streamed reply.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}

	answer, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	text, err := services.Collect(answer.Stream, nil)
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("answer stream: %w", err)
	}

	sources := answer.Retrieval.Sources()
	if sources == nil {
		sources = []string{}
	}
	return nil, AskOutput{Answer: text, Sources: sources, Grounded: answer.Grounded()}, nil
}

// handleSearch returns the nearest passages without calling the LLM.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	k := input.K
	if k <= 0 {
		k = domain.DefaultTopK
	}

	results, err := s.ports.Index.Search(ctx, input.Query, k)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			Source:  results[i].Chunk.Source,
			Page:    results[i].Chunk.Page,
			Score:   results[i].Score,
			Content: results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleIngest indexes files and directories on the server's filesystem.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil || s.ports.Session == nil {
		return nil, IngestOutput{}, ErrIngestDisabled
	}
	if len(input.Paths) == 0 {
		return nil, IngestOutput{}, fmt.Errorf("at least one path is required: %w", domain.ErrInvalidInput)
	}

	files, err := filesystem.Collect(ctx, input.Paths...)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	report, err := s.ports.Ingest.IngestFiles(ctx, s.ports.Session, files)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	output := IngestOutput{
		Files:            report.Files,
		Chunks:           report.Chunks,
		AlreadyProcessed: report.AlreadyProcessed,
		Unsupported:      report.Unsupported,
	}
	if output.Files == nil {
		output.Files = []string{}
	}
	if len(report.Failed) > 0 {
		output.Failed = make(map[string]string, len(report.Failed))
		for _, f := range report.Failed {
			output.Failed[f.Source] = f.Err.Error()
		}
	}
	return nil, output, nil
}

// handleCount reports index and session counts.
func (s *Server) handleCount(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CountInput,
) (*mcp.CallToolResult, CountOutput, error) {
	stats := s.stats(ctx)
	return nil, CountOutput{Chunks: stats.Chunks, Files: stats.Files}, nil
}

// stats reports what is indexed, falling back to the raw index count.
func (s *Server) stats(ctx context.Context) domain.IndexStats {
	if s.ports.Stats != nil {
		return s.ports.Stats.Stats(ctx, s.ports.Session)
	}
	stats := domain.IndexStats{Chunks: s.ports.Index.Count(ctx)}
	if s.ports.Session != nil {
		stats.Files = s.ports.Session.Len()
	}
	return stats
}
