package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/adapters/driven/storage/similarity"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Contents are lost when the process exits.
type VectorStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	meta   driven.IndexMeta
	closed bool
}

// NewVectorStore creates a new in-memory vector store.
// model is recorded as the embedding model of the stored vectors.
func NewVectorStore(model string) *VectorStore {
	return &VectorStore{meta: driven.IndexMeta{Model: model}}
}

// Add stores chunks. Each chunk needs an ID and an embedding.
func (s *VectorStore) Add(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if chunks[i].ID == "" || len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("chunk %d: id and embedding required: %w", i, domain.ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrVectorIndexUnavailable
	}
	if s.meta.Dimensions == 0 {
		s.meta.Dimensions = len(chunks[0].Embedding)
	}
	for i := range chunks {
		c := chunks[i]
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// Search returns up to k chunks nearest to vector.
func (s *VectorStore) Search(_ context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrVectorIndexUnavailable
	}

	ranker := similarity.NewRanker(vector, k)
	for i := range s.chunks {
		ranker.Offer(i, s.chunks[i].Embedding)
	}
	if n := ranker.Skipped(); n > 0 {
		logger.Warn("memory: skipped %d records with dimensions other than %d", n, len(vector))
	}

	top := ranker.Top()
	results := make([]domain.SearchResult, len(top))
	for i, hit := range top {
		results[i] = domain.SearchResult{Chunk: s.chunks[hit.Index], Score: hit.Score}
	}
	return results, nil
}

// Reset removes every record.
func (s *VectorStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrVectorIndexUnavailable
	}
	s.chunks = nil
	s.meta.Dimensions = 0
	return nil
}

// Count returns the number of stored records.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, domain.ErrVectorIndexUnavailable
	}
	return len(s.chunks), nil
}

// Meta returns the recorded model and dimensionality.
func (s *VectorStore) Meta(_ context.Context) (driven.IndexMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.chunks) == 0 {
		return driven.IndexMeta{Model: s.meta.Model}, nil
	}
	return s.meta, nil
}

// Close marks the store unusable.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.chunks = nil
	return nil
}
