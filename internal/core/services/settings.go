package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider     = "embedding.provider"
	KeyEmbedModel        = "embedding.model"
	KeyEmbedBaseURL      = "embedding.base_url"
	KeyEmbedAPIKey       = "embedding.api_key"
	KeyEmbedRPS          = "embedding.requests_per_second"
	KeyLLMProvider       = "llm.provider"
	KeyLLMModel          = "llm.model"
	KeyLLMBaseURL        = "llm.base_url"
	KeyLLMAPIKey         = "llm.api_key"
	KeyChunkProfile      = "chunking.profile"
	KeyChunkSize         = "chunking.chunk_size"
	KeyChunkOverlap      = "chunking.chunk_overlap"
	KeyTopK              = "retrieval.top_k"
	KeyIndexBackend      = "index.backend"
	KeyIndexDir          = "index.dir"
	KeyConnectAttempts   = "backend.connect_attempts"
	KeyConnectDelayMilli = "backend.connect_delay_ms"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, filling unset keys with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()
	r := storeReader{s.configStore}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          validOr(r.str(KeyEmbedProvider), d.Embedding.Provider, domain.AIProvider.IsValid),
			Model:             cmp.Or(r.str(KeyEmbedModel), d.Embedding.Model),
			BaseURL:           r.str(KeyEmbedBaseURL),
			APIKey:            r.str(KeyEmbedAPIKey),
			RequestsPerSecond: r.float(KeyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: validOr(r.str(KeyLLMProvider), d.LLM.Provider, domain.AIProvider.IsValid),
			Model:    cmp.Or(r.str(KeyLLMModel), d.LLM.Model),
			BaseURL:  r.str(KeyLLMBaseURL),
			APIKey:   r.str(KeyLLMAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			Profile:      validOr(r.str(KeyChunkProfile), d.Chunking.Profile, domain.ChunkProfile.IsValid),
			ChunkSize:    r.integer(KeyChunkSize),
			ChunkOverlap: r.integer(KeyChunkOverlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: cmp.Or(r.integer(KeyTopK), d.Retrieval.TopK),
		},
		Index: domain.IndexSettings{
			Backend: validOr(r.str(KeyIndexBackend), d.Index.Backend, domain.IndexBackend.IsValid),
			Dir:     r.str(KeyIndexDir),
		},
		Backend: domain.BackendSettings{
			ConnectAttempts: uint(cmp.Or(r.integer(KeyConnectAttempts), int(d.Backend.ConnectAttempts))),
			ConnectDelay:    d.Backend.ConnectDelay,
		},
	}
	if ms := r.integer(KeyConnectDelayMilli); ms > 0 {
		settings.Backend.ConnectDelay = time.Duration(ms) * time.Millisecond
	}

	// Cloud providers fall back to their own endpoint inside the adapter.
	if settings.Embedding.Provider.IsLocal() {
		settings.Embedding.BaseURL = cmp.Or(settings.Embedding.BaseURL, domain.DefaultOllamaURL)
	}
	if settings.LLM.Provider.IsLocal() {
		settings.LLM.BaseURL = cmp.Or(settings.LLM.BaseURL, domain.DefaultOllamaURL)
	}

	return settings, nil
}

// Save persists application settings in a single store update.
// Empty API keys are skipped so a blank form never erases a stored key.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	update := map[string]any{
		KeyEmbedProvider:     settings.Embedding.Provider.String(),
		KeyEmbedModel:        settings.Embedding.Model,
		KeyEmbedBaseURL:      settings.Embedding.BaseURL,
		KeyEmbedRPS:          settings.Embedding.RequestsPerSecond,
		KeyLLMProvider:       settings.LLM.Provider.String(),
		KeyLLMModel:          settings.LLM.Model,
		KeyLLMBaseURL:        settings.LLM.BaseURL,
		KeyChunkProfile:      settings.Chunking.Profile.String(),
		KeyChunkSize:         settings.Chunking.ChunkSize,
		KeyChunkOverlap:      settings.Chunking.ChunkOverlap,
		KeyTopK:              settings.Retrieval.TopK,
		KeyIndexBackend:      string(settings.Index.Backend),
		KeyIndexDir:          settings.Index.Dir,
		KeyConnectAttempts:   int(settings.Backend.ConnectAttempts),
		KeyConnectDelayMilli: int(settings.Backend.ConnectDelay / time.Millisecond),
	}
	for key, secret := range map[string]string{
		KeyEmbedAPIKey: settings.Embedding.APIKey,
		KeyLLMAPIKey:   settings.LLM.APIKey,
	} {
		if secret != "" {
			update[key] = secret
		}
	}

	if err := s.configStore.Update(update); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// modify loads the settings, applies fn and saves the result.
func (s *SettingsService) modify(fn func(*domain.AppSettings)) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	fn(settings)
	return s.Save(settings)
}

func checkProvider(kind string, provider domain.AIProvider, supported []domain.AIProvider, apiKey string) error {
	switch {
	case !provider.IsValid():
		return fmt.Errorf("invalid %s provider: %s", kind, provider)
	case !slices.Contains(supported, provider):
		return fmt.Errorf("provider %s does not support %s", provider, kind)
	case provider.RequiresAPIKey() && apiKey == "":
		return fmt.Errorf("API key required for %s", provider)
	}
	return nil
}

func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if err := checkProvider("embedding", provider, domain.AllEmbeddingProviders(), apiKey); err != nil {
		return err
	}
	return s.modify(func(a *domain.AppSettings) {
		a.Embedding.Provider = provider
		a.Embedding.Model = cmp.Or(model, domain.DefaultEmbeddingModels()[provider])
		a.Embedding.BaseURL = baseURLFor(provider, a.Embedding.BaseURL)
		a.Embedding.APIKey = apiKey
	})
}

func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if err := checkProvider("LLM", provider, domain.AllLLMProviders(), apiKey); err != nil {
		return err
	}
	return s.modify(func(a *domain.AppSettings) {
		a.LLM.Provider = provider
		a.LLM.Model = cmp.Or(model, domain.DefaultLLMModels()[provider])
		a.LLM.BaseURL = baseURLFor(provider, a.LLM.BaseURL)
		a.LLM.APIKey = apiKey
	})
}

// SetChunkProfile selects a chunk profile and clears explicit sizes.
func (s *SettingsService) SetChunkProfile(profile domain.ChunkProfile) error {
	if !profile.IsValid() {
		return fmt.Errorf("invalid chunk profile: %s", profile)
	}
	return s.modify(func(a *domain.AppSettings) {
		a.Chunking = domain.ChunkingSettings{Profile: profile}
	})
}

func (s *SettingsService) SetTopK(k int) error {
	if k <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", k)
	}
	return s.modify(func(a *domain.AppSettings) {
		a.Retrieval.TopK = k
	})
}

// Validate reports the first problem that would stop the pipeline from running.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	size, overlap := settings.Chunking.Effective()
	switch {
	case !settings.Embedding.IsConfigured():
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	case !settings.LLM.IsConfigured():
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	case size <= 0 || overlap < 0 || overlap >= size:
		return fmt.Errorf("invalid chunking: size %d, overlap %d", size, overlap)
	case settings.Retrieval.TopK <= 0:
		return fmt.Errorf("invalid top_k: %d", settings.Retrieval.TopK)
	case !settings.Index.Backend.IsValid():
		return fmt.Errorf("invalid index backend: %s", settings.Index.Backend)
	}
	return nil
}

func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig pings the configured embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	return s.ping(func(ctx context.Context, a *domain.AppSettings) error {
		return s.aiValidator.ValidateEmbedding(ctx, &a.Embedding)
	})
}

// ValidateLLMConfig pings the configured LLM provider.
func (s *SettingsService) ValidateLLMConfig() error {
	return s.ping(func(ctx context.Context, a *domain.AppSettings) error {
		return s.aiValidator.ValidateLLM(ctx, &a.LLM)
	})
}

func (s *SettingsService) ping(fn func(context.Context, *domain.AppSettings) error) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return fn(context.Background(), settings)
}

// baseURLFor keeps a configured local endpoint and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	return cmp.Or(current, domain.DefaultOllamaURL)
}

// validOr returns the stored value as T when valid reports true for it.
func validOr[T ~string](stored string, def T, valid func(T) bool) T {
	if v := T(stored); valid(v) {
		return v
	}
	return def
}

// storeReader normalises the types a config format may decode to.
// A value of the wrong type reads as unset.
type storeReader struct {
	store driven.ConfigStore
}

func (r storeReader) str(key string) string {
	v, _ := r.store.Get(key)
	s, _ := v.(string)
	return s
}

func (r storeReader) integer(key string) int {
	return int(r.float(key))
}

func (r storeReader) float(key string) float64 {
	v, _ := r.store.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
