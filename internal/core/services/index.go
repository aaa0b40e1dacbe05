package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure services implement the interfaces.
var (
	_ driving.VectorIndex  = (*VectorIndexService)(nil)
	_ driving.IndexService = (*IndexService)(nil)
)

// DefaultEmbedBatchSize is the number of texts sent per embedding request.
const DefaultEmbedBatchSize = 32

// VectorIndexService embeds chunk text and keeps it in a VectorStore.
type VectorIndexService struct {
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	batchSize int
}

// VectorIndexOption configures a VectorIndexService.
type VectorIndexOption func(*VectorIndexService)

// WithEmbedBatchSize sets how many texts are embedded per request.
func WithEmbedBatchSize(n int) VectorIndexOption {
	return func(s *VectorIndexService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewVectorIndexService creates a vector index over store using embedder.
func NewVectorIndexService(embedder driven.EmbeddingService, store driven.VectorStore, opts ...VectorIndexOption) *VectorIndexService {
	s := &VectorIndexService{
		embedder:  embedder,
		store:     store,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add embeds the chunk texts and persists them, returning new identifiers
// in input order. Nothing is stored if any embedding request fails.
func (s *VectorIndexService) Add(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	defer logger.Timed(fmt.Sprintf("index %d chunks", len(chunks)))()

	records := make([]domain.Chunk, len(chunks))
	copy(records, chunks)

	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = records[i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vectors), len(texts))
		}

		for i := start; i < end; i++ {
			records[i].ID = uuid.New().String()
			records[i].Embedding = vectors[i-start]
		}
		logger.Debug("embedded chunks %d-%d of %d", start+1, end, len(records))
	}

	if err := s.store.Add(ctx, records); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	return ids, nil
}

// Search embeds query and returns up to k nearest chunks, nearest first.
// An empty index or k <= 0 returns an empty result without calling the embedder.
func (s *VectorIndexService) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}
	if s.store == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	if n == 0 {
		return []domain.SearchResult{}, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("search: %d of %d records returned for k=%d", len(results), n, k)
	return results, nil
}

// Reset removes every record.
func (s *VectorIndexService) Reset(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrVectorIndexUnavailable
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	logger.Info("index reset")
	return nil
}

// Count returns the number of records, or 0 if the store cannot be read.
func (s *VectorIndexService) Count(ctx context.Context) int {
	if s.store == nil {
		return 0
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		logger.Warn("count records: %v", err)
		return 0
	}
	return n
}

// Meta returns the embedding model and dimensionality recorded for the index.
func (s *VectorIndexService) Meta(ctx context.Context) (driven.IndexMeta, error) {
	if s.store == nil {
		return driven.IndexMeta{}, domain.ErrVectorIndexUnavailable
	}
	return s.store.Meta(ctx)
}

// IndexService exposes whole-index operations together with the session.
type IndexService struct {
	index *VectorIndexService
}

// NewIndexService creates an index service.
func NewIndexService(index *VectorIndexService) *IndexService {
	return &IndexService{index: index}
}

// Reset clears the vector index and then the session. If the index cannot
// be cleared the session is left untouched.
func (s *IndexService) Reset(ctx context.Context, session driving.ProcessedSet) error {
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	if err := s.index.Reset(ctx); err != nil {
		return err
	}
	if session != nil {
		session.Reset()
	}
	return nil
}

// Count returns the number of indexed chunks.
func (s *IndexService) Count(ctx context.Context) int {
	if s.index == nil {
		return 0
	}
	return s.index.Count(ctx)
}

// Stats summarises the index and session.
func (s *IndexService) Stats(ctx context.Context, session driving.ProcessedSet) domain.IndexStats {
	var stats domain.IndexStats
	if session != nil {
		stats.Files = session.Len()
	}
	if s.index == nil {
		return stats
	}
	stats.Chunks = s.index.Count(ctx)
	meta, err := s.index.Meta(ctx)
	if err != nil {
		logger.Warn("read index meta: %v", err)
		return stats
	}
	stats.Model = meta.Model
	stats.Dimensions = meta.Dimensions
	return stats
}
