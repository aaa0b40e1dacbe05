package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension with no registered extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates a file could not be turned into text.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrBackendUnavailable indicates an embedding or LLM backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	// Nothing can be indexed or retrieved without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index could not be opened.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrStreamClosed indicates a fragment stream was read after Close.
	ErrStreamClosed = errors.New("stream closed")
)

// Backend names used by BackendConnectionError.
const (
	BackendEmbedding = "embedding"
	BackendLLM       = "llm"
)

// ExtractionError reports a file that could not be extracted.
// It is contained per file: the batch continues without it.
type ExtractionError struct {
	Source string
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Source, e.Format, e.Err)
}

// Unwrap exposes ErrExtractionFailed and the underlying cause.
func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtractionFailed, e.Err}
}

// BackendConnectionError reports an unreachable embedding or LLM backend.
// It is fatal to the operation in progress and carries remediation text.
type BackendConnectionError struct {
	// Backend is BackendEmbedding or BackendLLM.
	Backend string

	// Provider is the AI provider that failed.
	Provider AIProvider

	// BaseURL is the endpoint that was contacted, if known.
	BaseURL string

	// Models are the models the operator should make available.
	Models []string

	// Err is the underlying transport or API error.
	Err error
}

func (e *BackendConnectionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to connect to %s", e.Provider)
	if e.Backend != "" {
		fmt.Fprintf(&b, " (%s)", e.Backend)
	}
	if e.BaseURL != "" {
		fmt.Fprintf(&b, " at %s", e.BaseURL)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if hint := e.Hint(); hint != "" {
		b.WriteString("\n")
		b.WriteString(hint)
	}
	return b.String()
}

// Hint returns operator guidance for fixing the connection.
func (e *BackendConnectionError) Hint() string {
	switch e.Provider {
	case AIProviderOllama:
		var b strings.Builder
		b.WriteString("Make sure Ollama is running and models are installed:")
		for _, m := range e.Models {
			if m == "" {
				continue
			}
			b.WriteString("\n  ollama pull ")
			b.WriteString(m)
		}
		return b.String()
	case AIProviderOpenAI:
		return "Check the OpenAI API key and base URL (semsearch settings show)."
	default:
		return ""
	}
}

// Unwrap exposes ErrBackendUnavailable, the backend-specific sentinel and the cause.
func (e *BackendConnectionError) Unwrap() []error {
	errs := []error{ErrBackendUnavailable}
	switch e.Backend {
	case BackendEmbedding:
		errs = append(errs, ErrEmbeddingUnavailable)
	case BackendLLM:
		errs = append(errs, ErrLLMUnavailable)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsBackendConnection reports whether err is, or wraps, a BackendConnectionError.
func IsBackendConnection(err error) bool {
	var bce *BackendConnectionError
	return errors.As(err, &bce)
}
