// Package openai provides an LLM service adapter using the OpenAI chat API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1/"
	DefaultModel      = "gpt-4.1-nano"
	DefaultMaxRetries = 2
)

// ErrAPIKeyRequired is returned when no API key is configured.
var ErrAPIKeyRequired = errors.New("openai: API key required")

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1/).
	BaseURL string

	// Model is the chat model to use (default: gpt-4.1-nano).
	Model string

	// MaxRetries is the SDK retry count for transient errors (default: 2).
	// Negative disables retries.
	MaxRetries int
}

// LLMService streams chat completions from OpenAI.
type LLMService struct {
	client  openai.Client
	baseURL string
	model   string
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/") + "/"
	return &LLMService{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(cfg.MaxRetries),
		),
		baseURL: baseURL,
		model:   cfg.Model,
	}, nil
}

// Stream starts a streaming chat completion. The first event is read before
// returning so that connection and auth failures surface here.
func (s *LLMService) Stream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (domain.TextStream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: toParams(messages),
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	stream := &chatStream{stream: s.client.Chat.Completions.NewStreaming(ctx, params)}
	if !stream.advance() {
		err := stream.stream.Err()
		_ = stream.Close()
		if err != nil {
			return nil, s.classify(ctx, err)
		}
		return stream, nil
	}
	stream.primed = true
	return stream, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key and endpoint by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return s.classify(ctx, err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func toParams(messages []driven.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case driven.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case driven.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// classify turns transport failures and auth or missing-model responses
// into a BackendConnectionError.
func (s *LLMService) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		default:
			return fmt.Errorf("openai chat: %w", err)
		}
	}
	return &domain.BackendConnectionError{
		Backend:  domain.BackendLLM,
		Provider: domain.AIProviderOpenAI,
		BaseURL:  s.baseURL,
		Models:   []string{s.model},
		Err:      err,
	}
}

// chatStream adapts the SDK's server-sent event stream to domain.TextStream.
type chatStream struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current string
	primed  bool
	closed  bool
}

// advance moves to the next event that carries text.
func (c *chatStream) advance() bool {
	for c.stream.Next() {
		chunk := c.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			c.current = text
			return true
		}
	}
	c.current = ""
	return false
}

func (c *chatStream) Next() bool {
	if c.closed {
		return false
	}
	if c.primed {
		c.primed = false
		return true
	}
	return c.advance()
}

func (c *chatStream) Fragment() string { return c.current }

func (c *chatStream) Err() error {
	if c.closed {
		return nil
	}
	return c.stream.Err()
}

func (c *chatStream) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.stream.Close()
}
