package driven

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// VectorStore persists chunks with their embeddings and answers
// nearest-neighbour queries by cosine similarity.
type VectorStore interface {
	// Add persists chunks. Every chunk must have ID and Embedding set.
	// Records are durable once Add returns.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k records nearest to vector, nearest first.
	// An empty store or k <= 0 yields an empty result.
	Search(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error)

	// Reset removes every record. On failure the previous contents remain.
	Reset(ctx context.Context) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Meta returns the embedding model and dimensionality recorded for the store.
	// Both are zero values for a store that has never been written.
	Meta(ctx context.Context) (IndexMeta, error)

	// Close releases resources.
	Close() error
}

// IndexMeta describes the embeddings held by a VectorStore.
type IndexMeta struct {
	// Model is the embedding model that produced the stored vectors.
	Model string

	// Dimensions is the stored vector length.
	Dimensions int
}
