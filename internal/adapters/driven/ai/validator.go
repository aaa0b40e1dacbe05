package ai

import (
	"context"
	"time"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds a client from settings, pings it once and closes it.
// Unlike Connect it does not retry: the settings wizard wants a quick answer.
type ConfigValidator struct {
	timeout time.Duration
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	return v.reach(ctx, svc)
}

func (v *ConfigValidator) ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	return v.reach(ctx, svc)
}

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

func (v *ConfigValidator) reach(ctx context.Context, svc pinger) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
