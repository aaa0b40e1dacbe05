package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

// --- Mock implementations ---

// keywordEmbedder embeds text as keyword counts over a fixed vocabulary,
// plus a constant component so no vector is zero.
type keywordEmbedder struct {
	vocab []string
	err   error

	mu         sync.Mutex
	embedCalls int
	batchSizes []int
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	return &keywordEmbedder{vocab: vocab}
}

func (m *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(m.vocab)+1)
	for i, word := range m.vocab {
		v[i] = float32(strings.Count(lower, word))
	}
	v[len(m.vocab)] = 0.1
	return v
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int             { return len(m.vocab) + 1 }
func (m *keywordEmbedder) ModelName() string           { return "keyword-test" }
func (m *keywordEmbedder) Ping(_ context.Context) error { return m.err }
func (m *keywordEmbedder) Close() error                { return nil }

// mockLLMService records the messages it was sent and streams canned fragments.
type mockLLMService struct {
	fragments []string
	streamErr error
	midErr    error

	calls    int
	messages []driven.ChatMessage
}

func (m *mockLLMService) Stream(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (domain.TextStream, error) {
	m.calls++
	m.messages = messages
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return &failingStream{TextStream: NewStaticStream(m.fragments...), err: m.midErr}, nil
}

func (m *mockLLMService) ModelName() string           { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                { return nil }

// failingStream reports err once the wrapped stream is exhausted.
type failingStream struct {
	domain.TextStream
	err error
}

func (s *failingStream) Err() error { return s.err }

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("unknown prompt")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// wordCounter counts whitespace-separated words.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

// mockVectorIndex implements driving.VectorIndex for retriever tests.
type mockVectorIndex struct {
	results   []domain.SearchResult
	searchErr error
	addErr    error

	lastK     int
	lastQuery string
	added     []domain.Chunk
}

func (m *mockVectorIndex) Add(_ context.Context, chunks []domain.Chunk) ([]string, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.added = append(m.added, chunks...)
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].Source
	}
	return ids, nil
}

func (m *mockVectorIndex) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.results) {
		return m.results, nil
	}
	return m.results[:k], nil
}

func (m *mockVectorIndex) Reset(_ context.Context) error { return nil }
func (m *mockVectorIndex) Count(_ context.Context) int   { return len(m.added) }

// failingStore is a VectorStore whose every call fails.
type failingStore struct{ err error }

func (f *failingStore) Add(context.Context, []domain.Chunk) error { return f.err }
func (f *failingStore) Search(context.Context, []float32, int) ([]domain.SearchResult, error) {
	return nil, f.err
}
func (f *failingStore) Reset(context.Context) error                  { return f.err }
func (f *failingStore) Count(context.Context) (int, error)           { return 0, f.err }
func (f *failingStore) Meta(context.Context) (driven.IndexMeta, error) { return driven.IndexMeta{}, f.err }
func (f *failingStore) Close() error                                 { return nil }
