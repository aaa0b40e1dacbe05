// Package ai builds and health-checks the embedding and chat adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	ollamaembed "github.com/FamilOrujov/semsearch/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/FamilOrujov/semsearch/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/FamilOrujov/semsearch/internal/adapters/driven/llm/ollama"
	openaillm "github.com/FamilOrujov/semsearch/internal/adapters/driven/llm/openai"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// pingTimeout bounds each connectivity attempt.
const pingTimeout = 5 * time.Second

// InitResult holds the AI services used by a command.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Guard wraps both services with circuit breakers, and the embedding
// service with a rate limiter, for long-running modes.
func (r *InitResult) Guard(cfg GuardConfig) {
	if r.EmbeddingService != nil {
		r.EmbeddingService = NewGuardedEmbedding(r.EmbeddingService, cfg)
	}
	if r.LLMService != nil {
		r.LLMService = NewGuardedLLM(r.LLMService, cfg)
	}
}

// ConnectOptions controls which backends are checked at startup.
type ConnectOptions struct {
	// Ping checks connectivity before returning.
	Ping bool

	// NeedLLM creates the LLM service. Ingest-only commands leave it unset.
	NeedLLM bool
}

// Connect creates the configured services and, if requested, pings them
// with bounded retries. A failed check is returned as a
// *domain.BackendConnectionError whose hint lists every local model.
func Connect(ctx context.Context, settings *domain.AppSettings, opts ConnectOptions) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	result.EmbeddingService = embedder

	if opts.NeedLLM {
		llm, err := CreateLLMService(&settings.LLM)
		if err != nil {
			result.Close()
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		result.LLMService = llm
	}

	if !opts.Ping {
		return result, nil
	}

	pings := map[string]func(context.Context) error{"embedding": result.EmbeddingService.Ping}
	if result.LLMService != nil {
		pings["llm"] = result.LLMService.Ping
	}
	for _, name := range []string{"embedding", "llm"} {
		ping, ok := pings[name]
		if !ok {
			continue
		}
		if err := pingWithRetry(ctx, settings.Backend, name, ping); err != nil {
			result.Close()
			return nil, withModels(err, settings, opts.NeedLLM)
		}
	}
	return result, nil
}

// pingWithRetry pings up to cfg.ConnectAttempts times with backoff.
func pingWithRetry(ctx context.Context, cfg domain.BackendSettings, name string, ping func(context.Context) error) error {
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	return retry.Do(
		func() error {
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return ping(pctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(cfg.ConnectDelay),
		retry.MaxDelay(8*cfg.ConnectDelay+time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("%s ping attempt %d failed: %v", name, n+1, err)
		}),
	)
}

// withModels adds every model served by the failing provider to the hint.
func withModels(err error, settings *domain.AppSettings, includeLLM bool) error {
	var bce *domain.BackendConnectionError
	if !errors.As(err, &bce) {
		return err
	}
	var models []string
	if settings.Embedding.Provider == bce.Provider {
		models = append(models, settings.Embedding.Model)
	}
	if includeLLM && settings.LLM.Provider == bce.Provider && settings.LLM.Model != settings.Embedding.Model {
		models = append(models, settings.LLM.Model)
	}
	if len(models) > 0 {
		bce.Models = models
	}
	return bce
}

type (
	embeddingCtor func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	llmCtor       func(*domain.LLMSettings) (driven.LLMService, error)
)

var embeddingCtors = map[domain.AIProvider]embeddingCtor{
	domain.AIProviderOllama: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return createOllamaEmbedding(s), nil
	},
	domain.AIProviderOpenAI: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
		if err != nil {
			return nil, err
		}
		return svc, nil
	},
}

var llmCtors = map[domain.AIProvider]llmCtor{
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.Config{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		svc, err := openaillm.NewLLMService(openaillm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
		if err != nil {
			return nil, err
		}
		return svc, nil
	},
}

// CreateEmbeddingService builds the embedding adapter named by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, errors.New("embedding settings missing")
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider %q is not configured", settings.Provider)
	}
	ctor, ok := embeddingCtors[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	return ctor(settings)
}

// CreateLLMService builds the chat adapter named by settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, errors.New("LLM settings missing")
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("LLM provider %q is not configured", settings.Provider)
	}
	ctor, ok := llmCtors[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	return ctor(settings)
}

// createOllamaEmbedding seeds the vector size from the known model table.
// The adapter corrects it from the first response for unlisted models.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dims, ok := domain.EmbeddingDimensions()[settings.Model]
	if !ok {
		dims = ollamaembed.DefaultDimensions
	}
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dims,
	})
}
