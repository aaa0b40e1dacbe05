package domain

import "time"

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond caps embedding calls. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured reports whether the provider is known and has its API key.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.ready(e.APIKey)
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured reports whether the provider is known and has its API key.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.ready(l.APIKey)
}

// ChunkProfile names a preset chunk size and overlap.
type ChunkProfile string

// Available chunk profiles.
const (
	// ChunkProfileCoarse favours long context per chunk (1000/200).
	ChunkProfileCoarse ChunkProfile = "coarse"

	// ChunkProfileFine favours precise retrieval (500/75).
	ChunkProfileFine ChunkProfile = "fine"
)

// IsValid returns true if the profile is recognised.
func (p ChunkProfile) IsValid() bool {
	return p == ChunkProfileCoarse || p == ChunkProfileFine
}

// Sizes returns the chunk size and overlap for the profile.
func (p ChunkProfile) Sizes() (size, overlap int) {
	switch p {
	case ChunkProfileCoarse:
		return 1000, 200
	default:
		return 500, 75
	}
}

// String returns the string representation.
func (p ChunkProfile) String() string {
	return string(p)
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	// Profile selects preset sizes.
	Profile ChunkProfile

	// ChunkSize overrides the profile when positive.
	ChunkSize int

	// ChunkOverlap overrides the profile when ChunkSize is positive.
	ChunkOverlap int
}

// Effective returns the chunk size and overlap to use.
func (c ChunkingSettings) Effective() (size, overlap int) {
	if c.ChunkSize > 0 {
		return c.ChunkSize, c.ChunkOverlap
	}
	return c.Profile.Sizes()
}

// RetrievalSettings configures the retriever.
type RetrievalSettings struct {
	// TopK is the number of chunks requested per question.
	TopK int
}

// IndexBackend selects the vector store implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite persists vectors in a SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps vectors in process memory only.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendSQLite || b == IndexBackendMemory
}

// IndexSettings configures the vector index location.
type IndexSettings struct {
	// Backend is the vector store implementation.
	Backend IndexBackend

	// Dir is the directory holding the persisted index.
	// Empty means the default under the user's home directory.
	Dir string
}

// BackendSettings configures the startup connectivity check.
type BackendSettings struct {
	// ConnectAttempts is how many times to ping a backend before giving up.
	ConnectAttempts uint

	// ConnectDelay is the initial delay between attempts.
	ConnectDelay time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Index     IndexSettings
	Backend   BackendSettings
}

// Default values.
const (
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultEmbeddingModel = "mxbai-embed-large"
	DefaultLLMModel       = "gemma3:4b"
	DefaultTopK           = 4
)

// DefaultAppSettings returns settings that work against a local Ollama.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
			BaseURL:  DefaultOllamaURL,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModel,
			BaseURL:  DefaultOllamaURL,
		},
		Chunking: ChunkingSettings{
			Profile: ChunkProfileFine,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
		},
		Backend: BackendSettings{
			ConnectAttempts: 3,
			ConnectDelay:    500 * time.Millisecond,
		},
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
