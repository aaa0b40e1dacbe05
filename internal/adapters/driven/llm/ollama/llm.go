// Package ollama streams answers from a local Ollama server.
package ollama

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = domain.DefaultOllamaURL
	DefaultModel   = domain.DefaultLLMModel

	// DefaultHeaderTimeout covers model load before the first token.
	// Generation itself is bounded only by the caller's context.
	DefaultHeaderTimeout = 120 * time.Second

	errBodyLimit = 4 << 10
)

// Config holds the connection settings. Zero fields take the package defaults.
type Config struct {
	BaseURL       string
	Model         string
	HeaderTimeout time.Duration
}

// LLMService streams chat completions from /api/chat.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// chatLine is one object of the NDJSON reply.
type chatLine struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// NewLLMService creates a client for the Ollama server at cfg.BaseURL.
// HeaderTimeout bounds the wait for the first byte only; streaming is unbounded.
func NewLLMService(cfg Config) *LLMService {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cmp.Or(cfg.HeaderTimeout, DefaultHeaderTimeout)

	return &LLMService{
		client:  &http.Client{Transport: transport},
		baseURL: strings.TrimRight(cmp.Or(cfg.BaseURL, DefaultBaseURL), "/"),
		model:   cmp.Or(cfg.Model, DefaultModel),
	}
}

// Stream sends messages to /api/chat and returns the reply as it arrives.
// Errors reported mid-stream surface from the stream's Err.
func (s *LLMService) Stream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (domain.TextStream, error) {
	body := chatRequest{Model: s.model, Stream: true, Messages: make([]message, 0, len(messages))}
	for _, m := range messages {
		body.Messages = append(body.Messages, message{Role: m.Role, Content: m.Content})
	}
	if opts.MaxTokens > 0 {
		body.Options = map[string]any{"num_predict": opts.MaxTokens}
	}
	if opts.Temperature > 0 {
		if body.Options == nil {
			body.Options = map[string]any{}
		}
		body.Options["temperature"] = opts.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	resp, err := s.do(ctx, http.MethodPost, "/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return &chatStream{body: resp.Body, dec: json.NewDecoder(resp.Body)}, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodGet, "/api/tags", http.NoBody)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// do sends a request and returns the response only when it is 200 OK.
func (s *LLMService) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		return nil, s.unreachable(err)
	case resp.StatusCode != http.StatusOK:
		defer resp.Body.Close()
		return nil, s.statusError(resp)
	}
	return resp, nil
}

func (s *LLMService) unreachable(err error) error {
	return &domain.BackendConnectionError{
		Backend:  domain.BackendLLM,
		Provider: domain.AIProviderOllama,
		BaseURL:  s.baseURL,
		Models:   []string{s.model},
		Err:      err,
	}
}

// statusError reads a failed response. 404 means the model is not pulled.
func (s *LLMService) statusError(resp *http.Response) error {
	text, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	err := fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, bytes.TrimSpace(text))
	if resp.StatusCode == http.StatusNotFound {
		return s.unreachable(err)
	}
	return err
}

// chatStream decodes the NDJSON reply one line at a time.
type chatStream struct {
	body    io.ReadCloser
	dec     *json.Decoder
	current string
	err     error
	done    bool
}

func (c *chatStream) Next() bool {
	c.current = ""
	for !c.done {
		var chunk chatLine
		if err := c.dec.Decode(&chunk); err != nil {
			c.done = true
			if errors.Is(err, io.EOF) {
				c.err = fmt.Errorf("ollama: stream ended before completion: %w", io.ErrUnexpectedEOF)
			} else {
				c.err = fmt.Errorf("ollama: read stream: %w", err)
			}
			return false
		}
		if chunk.Error != "" {
			c.done = true
			c.err = fmt.Errorf("ollama: %s", chunk.Error)
			return false
		}
		if chunk.Done {
			c.done = true
		}
		if chunk.Message.Content != "" {
			c.current = chunk.Message.Content
			return true
		}
	}
	return false
}

func (c *chatStream) Fragment() string { return c.current }

func (c *chatStream) Err() error { return c.err }

func (c *chatStream) Close() error {
	if c.body == nil {
		return nil
	}
	c.done = true
	err := c.body.Close()
	c.body = nil
	return err
}
