package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Empty(t *testing.T) {
	store := NewConfigStore()

	_, ok := store.Get("llm.model")
	assert.False(t, ok)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_UpdateMerges(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Update(map[string]any{"llm.model": "gemma3:4b", "retrieval.top_k": 4}))
	require.NoError(t, store.Update(map[string]any{"llm.model": "llama3.2"}))

	model, ok := store.Get("llm.model")
	require.True(t, ok)
	assert.Equal(t, "llama3.2", model)

	topK, ok := store.Get("retrieval.top_k")
	require.True(t, ok)
	assert.Equal(t, 4, topK)
}

func TestConfigStore_UpdateCopiesInput(t *testing.T) {
	store := NewConfigStore()
	in := map[string]any{"k": "v"}
	require.NoError(t, store.Update(in))

	in["k"] = "changed"

	v, _ := store.Get("k")
	assert.Equal(t, "v", v)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Update(map[string]any{fmt.Sprintf("key.%d", i): i}))
		}()
		go func() {
			defer wg.Done()
			store.Get(fmt.Sprintf("key.%d", i))
		}()
	}
	wg.Wait()

	for i := range 50 {
		v, ok := store.Get(fmt.Sprintf("key.%d", i))
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}
