package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure the guards implement the interfaces.
var (
	_ driven.EmbeddingService = (*GuardedEmbedding)(nil)
	_ driven.LLMService       = (*GuardedLLM)(nil)
)

// GuardConfig configures the circuit breaker and rate limiter.
type GuardConfig struct {
	// RequestsPerSecond caps embedding requests. Zero means unlimited.
	RequestsPerSecond float64

	// FailureThreshold is the number of consecutive connection failures
	// that opens the breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultGuardConfig returns the guard settings for long-running modes.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		FailureThreshold: 3,
		OpenTimeout:      30 * time.Second,
	}
}

func newBreaker(name string, cfg GuardConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultGuardConfig().FailureThreshold
	}
	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = DefaultGuardConfig().OpenTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Only an unreachable backend counts against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !domain.IsBackendConnection(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

// openError reports a request rejected by an open breaker.
func openError(backend string, sentinel, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s backend paused after repeated failures: %w: %w", backend, sentinel, err)
	}
	return err
}

// GuardedEmbedding rate-limits an EmbeddingService and stops calling it
// while it is unreachable.
type GuardedEmbedding struct {
	next    driven.EmbeddingService
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuardedEmbedding wraps next with a circuit breaker and optional rate limiter.
func NewGuardedEmbedding(next driven.EmbeddingService, cfg GuardConfig) *GuardedEmbedding {
	g := &GuardedEmbedding{
		next:    next,
		breaker: newBreaker("embedding", cfg),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond))
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return g
}

func (g *GuardedEmbedding) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// Embed embeds one text through the guard.
func (g *GuardedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Embed(ctx, text)
	})
	if err != nil {
		return nil, openError(domain.BackendEmbedding, domain.ErrEmbeddingUnavailable, err)
	}
	return res.([]float32), nil
}

// EmbedBatch embeds a batch as one guarded request.
func (g *GuardedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, openError(domain.BackendEmbedding, domain.ErrEmbeddingUnavailable, err)
	}
	return res.([][]float32), nil
}

// Dimensions returns the wrapped service's dimensions.
func (g *GuardedEmbedding) Dimensions() int { return g.next.Dimensions() }

// ModelName returns the wrapped service's model.
func (g *GuardedEmbedding) ModelName() string { return g.next.ModelName() }

// Ping bypasses the guard.
func (g *GuardedEmbedding) Ping(ctx context.Context) error { return g.next.Ping(ctx) }

// Close closes the wrapped service.
func (g *GuardedEmbedding) Close() error { return g.next.Close() }

// GuardedLLM stops opening answer streams while the LLM is unreachable.
type GuardedLLM struct {
	next    driven.LLMService
	breaker *gobreaker.CircuitBreaker
}

// NewGuardedLLM wraps next with a circuit breaker.
func NewGuardedLLM(next driven.LLMService, cfg GuardConfig) *GuardedLLM {
	return &GuardedLLM{next: next, breaker: newBreaker("llm", cfg)}
}

// Stream opens a stream through the breaker. Failures after the stream
// starts are not counted.
func (g *GuardedLLM) Stream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (domain.TextStream, error) {
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Stream(ctx, messages, opts)
	})
	if err != nil {
		return nil, openError(domain.BackendLLM, domain.ErrLLMUnavailable, err)
	}
	return res.(domain.TextStream), nil
}

// ModelName returns the wrapped service's model.
func (g *GuardedLLM) ModelName() string { return g.next.ModelName() }

// Ping bypasses the guard.
func (g *GuardedLLM) Ping(ctx context.Context) error { return g.next.Ping(ctx) }

// Close closes the wrapped service.
func (g *GuardedLLM) Close() error { return g.next.Close() }
