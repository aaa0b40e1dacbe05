package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

func chunk(id string, vec ...float32) domain.Chunk {
	return domain.Chunk{ID: id, Content: "content " + id, Source: "doc.txt", Embedding: vec}
}

func TestNewVectorStore(t *testing.T) {
	store := NewVectorStore("test-model")
	require.NotNil(t, store)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVectorStore_AddAndSearch(t *testing.T) {
	store := NewVectorStore("test-model")
	ctx := context.Background()

	err := store.Add(ctx, []domain.Chunk{
		chunk("a", 1, 0),
		chunk("b", 0, 1),
		chunk("c", 1, 1),
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "c", results[1].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, "content a", results[0].Chunk.Content)
}

func TestVectorStore_Search_Edges(t *testing.T) {
	store := NewVectorStore("m")
	ctx := context.Background()

	results, err := store.Search(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results, "empty store")

	require.NoError(t, store.Add(ctx, []domain.Chunk{chunk("a", 1, 0)}))

	results, err = store.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results, "k = 0")

	results, err = store.Search(ctx, []float32{1, 0}, -1)
	require.NoError(t, err)
	assert.Empty(t, results, "negative k")

	results, err = store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1, "fewer records than k")
}

func TestVectorStore_Search_SkipsMismatchedDimensions(t *testing.T) {
	store := NewVectorStore("m")
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, []domain.Chunk{chunk("a", 1, 0), chunk("b", 1, 0, 0)}))

	results, err := store.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func TestVectorStore_Add_Validation(t *testing.T) {
	store := NewVectorStore("m")
	ctx := context.Background()

	err := store.Add(ctx, []domain.Chunk{{ID: "", Embedding: []float32{1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Add(ctx, []domain.Chunk{{ID: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.NoError(t, store.Add(ctx, nil))
}

func TestVectorStore_Add_CopiesEmbedding(t *testing.T) {
	store := NewVectorStore("m")
	ctx := context.Background()
	vec := []float32{1, 0}
	require.NoError(t, store.Add(ctx, []domain.Chunk{{ID: "a", Embedding: vec}}))

	vec[0] = -1
	results, err := store.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestVectorStore_Reset(t *testing.T) {
	store := NewVectorStore("m")
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, []domain.Chunk{chunk("a", 1, 0)}))

	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.Add(ctx, []domain.Chunk{chunk("b", 0, 1, 0)}))
	meta, err := store.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Dimensions)
}

func TestVectorStore_Meta(t *testing.T) {
	store := NewVectorStore("mxbai-embed-large")
	ctx := context.Background()

	meta, err := store.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mxbai-embed-large", meta.Model)
	assert.Equal(t, 0, meta.Dimensions)

	require.NoError(t, store.Add(ctx, []domain.Chunk{chunk("a", 1, 2, 3, 4)}))
	meta, err = store.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, meta.Dimensions)
}

func TestVectorStore_Closed(t *testing.T) {
	store := NewVectorStore("m")
	ctx := context.Background()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Add(ctx, []domain.Chunk{chunk("a", 1)}), domain.ErrVectorIndexUnavailable)
	_, err := store.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	assert.ErrorIs(t, store.Reset(ctx), domain.ErrVectorIndexUnavailable)
}

func TestVectorStore_ConcurrentAccess(t *testing.T) {
	store := NewVectorStore("m")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Add(ctx, []domain.Chunk{chunk(fmt.Sprintf("c%d", i), 1, float32(i))})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.Search(ctx, []float32{1, 0}, 3)
		}()
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
