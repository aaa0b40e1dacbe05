// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = domain.DefaultOllamaURL
	DefaultModel   = domain.DefaultEmbeddingModel
	DefaultTimeout = 60 * time.Second

	// DefaultDimensions matches mxbai-embed-large. It is replaced by the
	// real width after the first successful call.
	DefaultDimensions = 1024
)

// Config holds the connection settings. Zero fields take the package defaults.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// EmbeddingService calls POST /api/embed, which accepts a list of inputs
// and returns one vector per input in the same order.
type EmbeddingService struct {
	http    *http.Client
	baseURL string
	model   string
	dims    atomic.Int64
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingService creates a client for the Ollama server at cfg.BaseURL.
// No request is made until the first call.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	s := &EmbeddingService{
		http:    &http.Client{Timeout: orDefault(cfg.Timeout, DefaultTimeout)},
		baseURL: strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		model:   orDefault(cfg.Model, DefaultModel),
	}
	s.dims.Store(int64(orDefault(cfg.Dimensions, DefaultDimensions)))
	return s
}

// orDefault returns v unless it is the zero value.
func orDefault[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// Embed returns the vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embedResponse
	if err := s.post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &out); err != nil {
		return nil, err
	}

	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(out.Embeddings), len(texts))
	}
	for i, v := range out.Embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("ollama returned an empty embedding for input %d (model %s)", i, s.model)
		}
	}
	s.dims.Store(int64(len(out.Embeddings[0])))
	return out.Embeddings, nil
}

// Dimensions returns the vector length, updated from each reply
// so a model that disagrees with the configured value wins.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dims.Load())
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists local models via /api/tags, which needs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama ping: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return s.unreachable(err)
	}
	defer resp.Body.Close()
	return s.checkStatus(resp)
}

func (s *EmbeddingService) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

func (s *EmbeddingService) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return s.unreachable(err)
	}
	defer resp.Body.Close()

	if err := s.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *EmbeddingService) unreachable(err error) error {
	return &domain.BackendConnectionError{
		Backend:  domain.BackendEmbedding,
		Provider: domain.AIProviderOllama,
		BaseURL:  s.baseURL,
		Models:   []string{s.model},
		Err:      err,
	}
}

// checkStatus turns a non-200 reply into an error. A 404 means the model
// has not been pulled, which is reported like an unreachable backend.
func (s *EmbeddingService) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	if resp.StatusCode == http.StatusNotFound {
		return s.unreachable(err)
	}
	return err
}
