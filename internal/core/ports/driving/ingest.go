package driving

import (
	"context"
	"io"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// Upload is a named byte stream handed to the ingest pipeline.
// Name is the user-facing identifier and the extension hint. It is never
// used as a filesystem path.
type Upload struct {
	Name    string
	Content io.Reader
}

// FileFailure records a file that could not be extracted.
type FileFailure struct {
	Source string
	Err    error
}

// IngestReport summarises one ingest call.
type IngestReport struct {
	// Files lists the sources indexed by this call, in input order.
	Files []string

	// Chunks is the number of chunks added to the index.
	Chunks int

	// AlreadyProcessed lists sources skipped because the session has them.
	AlreadyProcessed []string

	// Unsupported lists sources skipped because no extractor handles them.
	Unsupported []string

	// Failed lists sources whose extraction failed.
	Failed []FileFailure
}

// ProcessedSet tracks which sources a session has already indexed.
type ProcessedSet interface {
	IsProcessed(source string) bool
	MarkProcessed(sources ...string)
	Processed() []string
	Len() int
	Reset()
}

// IngestService turns uploads into indexed chunks.
type IngestService interface {
	// Ingest stages uploads to temporary files and indexes the new ones.
	// Per-file extraction failures are reported, not returned. Backend
	// failures abort the call and are returned.
	Ingest(ctx context.Context, session ProcessedSet, uploads []Upload) (*IngestReport, error)

	// IngestFiles ingests files on disk as uploads named by their Source.
	IngestFiles(ctx context.Context, session ProcessedSet, files []domain.SourceFile) (*IngestReport, error)

	// ProcessFiles extracts, normalises, chunks and indexes the files.
	// Returns the number of chunks added and the files that failed extraction.
	ProcessFiles(ctx context.Context, files []domain.SourceFile) (int, []FileFailure, error)
}
