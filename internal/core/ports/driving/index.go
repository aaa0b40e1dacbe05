package driving

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// VectorIndex embeds and stores chunks, and finds the nearest ones to a query.
type VectorIndex interface {
	// Add embeds and persists chunks, returning their new identifiers.
	Add(ctx context.Context, chunks []domain.Chunk) ([]string, error)

	// Search returns up to k chunks nearest to query, nearest first.
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)

	// Reset removes every record, leaving an empty index at the same location.
	Reset(ctx context.Context) error

	// Count returns the number of records. Failures are logged and reported as 0.
	Count(ctx context.Context) int
}

// IndexService exposes whole-index operations to the user.
type IndexService interface {
	// Reset clears the vector index and the session's processed files.
	Reset(ctx context.Context, session ProcessedSet) error

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) int

	// Stats summarises the index and session.
	Stats(ctx context.Context, session ProcessedSet) domain.IndexStats
}
