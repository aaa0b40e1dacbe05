package driven

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// Extractor turns a file of one or more formats into text documents.
// Paged formats return one document per page; others return a single document.
type Extractor interface {
	// Formats returns the formats this extractor handles.
	Formats() []domain.Format

	// Extract reads the file at path and returns its text.
	// Returned documents have Format, Page and Content set. Source is left
	// for the caller, which knows the user-facing name of the file.
	Extract(ctx context.Context, path string) ([]domain.Document, error)
}

// ExtractorRegistry is the strategy table used to dispatch by format.
type ExtractorRegistry interface {
	// Register adds an extractor for every format it reports.
	// A later registration for the same format replaces the earlier one.
	Register(extractor Extractor)

	// Lookup returns the extractor for a format.
	// ok is false for unsupported formats; this is not an error.
	Lookup(format domain.Format) (extractor Extractor, ok bool)

	// Formats returns all registered formats, sorted.
	Formats() []domain.Format
}
