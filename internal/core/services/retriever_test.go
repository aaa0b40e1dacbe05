package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

func TestNewRetrieverService_DefaultTopK(t *testing.T) {
	assert.Equal(t, domain.DefaultTopK, NewRetrieverService(&mockVectorIndex{}, 0).TopK())
	assert.Equal(t, 7, NewRetrieverService(&mockVectorIndex{}, 7).TopK())
}

func TestRetrieverService_Retrieve(t *testing.T) {
	index := &mockVectorIndex{results: []domain.SearchResult{
		{Chunk: domain.Chunk{Content: "one"}, Score: 0.9},
		{Chunk: domain.Chunk{Content: "two"}, Score: 0.5},
		{Chunk: domain.Chunk{Content: "three"}, Score: 0.1},
	}}
	r := NewRetrieverService(index, 2)

	res, err := r.Retrieve(context.Background(), "what?")

	require.NoError(t, err)
	assert.Equal(t, "what?", res.Question)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, 2, index.lastK)
	assert.Equal(t, "what?", index.lastQuery)
}

func TestRetrieverService_BlankQuestionIsSearched(t *testing.T) {
	index := &mockVectorIndex{}
	r := NewRetrieverService(index, 4)

	res, err := r.Retrieve(context.Background(), "   ")

	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
	assert.Equal(t, "   ", index.lastQuery)
	assert.Equal(t, 4, index.lastK)
}

func TestRetrieverService_PropagatesErrors(t *testing.T) {
	boom := errors.New("backend down")
	r := NewRetrieverService(&mockVectorIndex{searchErr: boom}, 4)

	_, err := r.Retrieve(context.Background(), "q")

	assert.ErrorIs(t, err, boom)
}
