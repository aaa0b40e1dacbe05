package services

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// RetrieverService fetches the top-k chunks for a question.
// There is no re-ranking, query rewriting or filtering.
type RetrieverService struct {
	index driving.VectorIndex
	topK  int
}

// NewRetrieverService creates a retriever. A non-positive topK uses domain.DefaultTopK.
func NewRetrieverService(index driving.VectorIndex, topK int) *RetrieverService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &RetrieverService{index: index, topK: topK}
}

// TopK returns the number of chunks requested per question.
func (r *RetrieverService) TopK() int {
	return r.topK
}

// Retrieve returns up to TopK chunks for the question, nearest first.
// A blank question is searched like any other.
func (r *RetrieverService) Retrieve(ctx context.Context, question string) (domain.RetrievalResult, error) {
	if r.index == nil {
		return domain.RetrievalResult{}, domain.ErrVectorIndexUnavailable
	}

	logger.Section("Retrieve")
	results, err := r.index.Search(ctx, question, r.topK)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	for i, res := range results {
		logger.Debug("  %d. %.4f %s", i+1, res.Score, res.Chunk.Location())
	}

	return domain.RetrievalResult{Question: question, Results: results}, nil
}
