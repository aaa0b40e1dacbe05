package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/FamilOrujov/semsearch/internal/adapters/driven/ai"
	"github.com/FamilOrujov/semsearch/internal/adapters/driven/config/env"
	"github.com/FamilOrujov/semsearch/internal/adapters/driven/config/file"
	"github.com/FamilOrujov/semsearch/internal/adapters/driven/storage/memory"
	"github.com/FamilOrujov/semsearch/internal/adapters/driven/storage/sqlite"
	"github.com/FamilOrujov/semsearch/internal/adapters/driven/tokenizer"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/cli"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/core/services"
	"github.com/FamilOrujov/semsearch/internal/extractors"
	"github.com/FamilOrujov/semsearch/internal/logger"
	"github.com/FamilOrujov/semsearch/internal/postprocessors"
)

// Environment variables that relocate the on-disk state.
const (
	configDirEnv = "SEMSEARCH_CONFIG_DIR"
	promptDirEnv = "SEMSEARCH_PROMPT_DIR"
)

// wiring builds the core services from settings on first use.
type wiring struct {
	settings  driving.SettingsService
	overrides *env.Overrides
	promptDir string

	// connect is ai.Connect, replaced in tests.
	connect func(context.Context, *domain.AppSettings, ai.ConnectOptions) (*ai.InitResult, error)
}

// resolve merges saved settings, environment overrides and command flags.
func (w *wiring) resolve(opts cli.Options) (*domain.AppSettings, error) {
	s, err := w.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if w.overrides != nil {
		w.overrides.Apply(s)
	}

	if opts.IndexDir != "" {
		s.Index.Dir = opts.IndexDir
	}
	if opts.Ephemeral {
		s.Index.Backend = domain.IndexBackendMemory
	}
	if opts.TopK > 0 {
		s.Retrieval.TopK = opts.TopK
	}
	if opts.Profile != "" {
		p := domain.ChunkProfile(opts.Profile)
		if !p.IsValid() {
			return nil, fmt.Errorf("invalid chunk profile %q (want fine or coarse)", opts.Profile)
		}
		s.Chunking = domain.ChunkingSettings{Profile: p}
	}

	if s.Index.Dir != "" {
		abs, err := filepath.Abs(s.Index.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolving index dir: %w", err)
		}
		s.Index.Dir = abs
	}
	return s, nil
}

func (w *wiring) bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	logger.Section("Bootstrap")

	s, err := w.resolve(opts)
	if err != nil {
		return nil, err
	}

	connect := w.connect
	if connect == nil {
		connect = ai.Connect
	}
	backends, err := connect(ctx, s, ai.ConnectOptions{Ping: opts.Ping, NeedLLM: opts.NeedLLM})
	if err != nil {
		return nil, err
	}
	if opts.Guard {
		cfg := ai.DefaultGuardConfig()
		cfg.RequestsPerSecond = s.Embedding.RequestsPerSecond
		backends.Guard(cfg)
	}

	store, err := openStore(s)
	if err != nil {
		backends.Close()
		return nil, err
	}

	pipeline, err := buildPipeline(s.Chunking)
	if err != nil {
		store.Close()
		backends.Close()
		return nil, err
	}

	index := services.NewVectorIndexService(backends.EmbeddingService, store)
	svc := &cli.Services{
		Ingest:       services.NewIngestService(extractors.NewDefaultRegistry(), pipeline, index),
		Index:        services.NewIndexService(index),
		VectorIndex:  index,
		Session:      services.NewSession(),
		ResultAction: services.NewResultActionService(),
		Close: func() error {
			backends.Close()
			return store.Close()
		},
	}

	if backends.LLMService != nil {
		composer := services.NewAnswerComposer(
			services.NewRetrieverService(index, s.Retrieval.TopK),
			backends.LLMService,
			services.WithTokenCounter(tokenizer.NewCounter("")),
		)
		prompts, err := file.NewPromptStore(w.promptDir)
		if err != nil {
			logger.Warn("prompt store unavailable, using the built-in prompt: %v", err)
		} else {
			composer.SetPromptStore(prompts)
		}
		svc.Answer = composer
	}

	logger.Debug("index backend %s, top k %d, embedding %s", s.Index.Backend, s.Retrieval.TopK, s.Embedding.Model)
	return svc, nil
}

// openStore opens the configured vector store.
func openStore(s *domain.AppSettings) (driven.VectorStore, error) {
	switch s.Index.Backend {
	case domain.IndexBackendMemory:
		return memory.NewVectorStore(s.Embedding.Model), nil
	case domain.IndexBackendSQLite, "":
		store, err := sqlite.NewVectorStore(s.Index.Dir, s.Embedding.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		logger.Debug("index at %s", store.Path())
		return store, nil
	default:
		return nil, errors.New("unknown index backend: " + string(s.Index.Backend))
	}
}

func buildPipeline(c domain.ChunkingSettings) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, domain.PipelineConfigFor(c))
	if err != nil {
		return nil, fmt.Errorf("building ingest pipeline: %w", err)
	}
	return pipeline, nil
}
