package driven

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// AIConfigValidator checks that provider settings can reach a live backend.
// Settings that leave the provider unset are accepted without a call.
type AIConfigValidator interface {
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}
