// Package env applies SEMSEARCH_* environment variables on top of stored settings.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// Prefix is prepended to every variable name.
const Prefix = "SEMSEARCH_"

// Overrides holds the variables that were set. Unset variables stay nil.
type Overrides struct {
	EmbeddingProvider *string  `env:"EMBEDDING_PROVIDER"`
	EmbeddingModel    *string  `env:"EMBEDDING_MODEL"`
	EmbeddingBaseURL  *string  `env:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   *string  `env:"EMBEDDING_API_KEY"`
	EmbeddingRPS      *float64 `env:"EMBEDDING_REQUESTS_PER_SECOND"`

	LLMProvider *string `env:"LLM_PROVIDER"`
	LLMModel    *string `env:"LLM_MODEL"`
	LLMBaseURL  *string `env:"LLM_BASE_URL"`
	LLMAPIKey   *string `env:"LLM_API_KEY"`

	// OpenAIAPIKey fills both API keys when they are otherwise empty.
	OpenAIAPIKey *string `env:"OPENAI_API_KEY"`

	ChunkProfile *string `env:"CHUNK_PROFILE"`
	ChunkSize    *int    `env:"CHUNK_SIZE"`
	ChunkOverlap *int    `env:"CHUNK_OVERLAP"`

	TopK *int `env:"TOP_K"`

	IndexBackend *string `env:"INDEX_BACKEND"`
	IndexDir     *string `env:"INDEX_DIR"`

	ConnectAttempts *uint          `env:"CONNECT_ATTEMPTS"`
	ConnectDelay    *time.Duration `env:"CONNECT_DELAY"`
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are given. Missing files are ignored and existing variables are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load parses overrides from the process environment.
func Load() (*Overrides, error) {
	return Parse(environMap(os.Environ()))
}

// Parse parses overrides from the given variables.
func Parse(environ map[string]string) (*Overrides, error) {
	var o Overrides
	err := env.ParseWithOptions(&o, env.Options{
		Prefix:      Prefix,
		Environment: environ,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing %s* variables: %w", Prefix, err)
	}
	return &o, nil
}

// Apply copies every set override into settings.
func (o *Overrides) Apply(s *domain.AppSettings) {
	setString(&s.Embedding.Model, o.EmbeddingModel)
	setString(&s.Embedding.BaseURL, o.EmbeddingBaseURL)
	setString(&s.Embedding.APIKey, o.EmbeddingAPIKey)
	if o.EmbeddingProvider != nil {
		s.Embedding.Provider = domain.AIProvider(*o.EmbeddingProvider)
	}
	if o.EmbeddingRPS != nil {
		s.Embedding.RequestsPerSecond = *o.EmbeddingRPS
	}

	setString(&s.LLM.Model, o.LLMModel)
	setString(&s.LLM.BaseURL, o.LLMBaseURL)
	setString(&s.LLM.APIKey, o.LLMAPIKey)
	if o.LLMProvider != nil {
		s.LLM.Provider = domain.AIProvider(*o.LLMProvider)
	}

	if o.OpenAIAPIKey != nil {
		if s.Embedding.APIKey == "" {
			s.Embedding.APIKey = *o.OpenAIAPIKey
		}
		if s.LLM.APIKey == "" {
			s.LLM.APIKey = *o.OpenAIAPIKey
		}
	}

	if o.ChunkProfile != nil {
		s.Chunking.Profile = domain.ChunkProfile(*o.ChunkProfile)
	}
	if o.ChunkSize != nil {
		s.Chunking.ChunkSize = *o.ChunkSize
	}
	if o.ChunkOverlap != nil {
		s.Chunking.ChunkOverlap = *o.ChunkOverlap
	}
	if o.TopK != nil {
		s.Retrieval.TopK = *o.TopK
	}

	if o.IndexBackend != nil {
		s.Index.Backend = domain.IndexBackend(*o.IndexBackend)
	}
	setString(&s.Index.Dir, o.IndexDir)

	if o.ConnectAttempts != nil {
		s.Backend.ConnectAttempts = *o.ConnectAttempts
	}
	if o.ConnectDelay != nil {
		s.Backend.ConnectDelay = *o.ConnectDelay
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
