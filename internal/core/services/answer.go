package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure AnswerComposer implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerComposer)(nil)
	_ driven.PromptStoreAware = (*AnswerComposer)(nil)
)

// DefaultAnswerPrompt is the built-in system prompt for grounded answers.
// %s is replaced with the retrieved context.
const DefaultAnswerPrompt = driven.DefaultAnswerSystemPrompt

// AnswerComposer retrieves context for a question and streams an answer
// from the language model that is restricted to that context.
type AnswerComposer struct {
	retriever driving.Retriever
	llm       driven.LLMService
	tokens    driven.TokenCounter
	opts      driven.ChatOptions

	mu      sync.RWMutex
	prompts driven.PromptStore
}

// AnswerOption configures an AnswerComposer.
type AnswerOption func(*AnswerComposer)

// WithTokenCounter enables prompt size estimates.
func WithTokenCounter(tc driven.TokenCounter) AnswerOption {
	return func(a *AnswerComposer) { a.tokens = tc }
}

// WithChatOptions sets generation options passed to the language model.
func WithChatOptions(opts driven.ChatOptions) AnswerOption {
	return func(a *AnswerComposer) { a.opts = opts }
}

// NewAnswerComposer creates an answer composer.
func NewAnswerComposer(retriever driving.Retriever, llm driven.LLMService, opts ...AnswerOption) *AnswerComposer {
	a := &AnswerComposer{retriever: retriever, llm: llm}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetPromptStore sets the prompt store for loading the system prompt.
func (a *AnswerComposer) SetPromptStore(store driven.PromptStore) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts = store
}

// Answer retrieves context and starts the answer stream.
//
// When retrieval is empty the stream yields domain.NoDocumentsResponse and
// the language model is not called. Otherwise the system prompt carries the
// retrieved chunks joined by domain.ContextSeparator and the question is sent
// as the user message. The stream is returned unread; the caller must Close it.
func (a *AnswerComposer) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	if a.retriever == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	retrieval, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Question:  question,
		Retrieval: retrieval,
	}

	if retrieval.IsEmpty() {
		logger.Info("no chunks retrieved; returning canned response")
		answer.Stream = NewStaticStream(domain.NoDocumentsResponse)
		return answer, nil
	}

	if a.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	answer.Context = retrieval.Context()
	system := renderPrompt(a.systemTemplate(), answer.Context)
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: question},
	}

	if a.tokens != nil {
		answer.PromptTokens = a.tokens.Count(system) + a.tokens.Count(question)
		logger.Debug("prompt: ~%d tokens from %d chunks", answer.PromptTokens, len(retrieval.Results))
	}

	logger.Section("Answer")
	stream, err := a.llm.Stream(ctx, messages, a.opts)
	if err != nil {
		return nil, fmt.Errorf("start answer stream: %w", err)
	}
	answer.Stream = stream
	return answer, nil
}

func (a *AnswerComposer) systemTemplate() string {
	a.mu.RLock()
	store := a.prompts
	a.mu.RUnlock()

	if store == nil {
		return DefaultAnswerPrompt
	}
	tpl, err := store.Load(driven.PromptAnswerSystem)
	if err != nil || strings.TrimSpace(tpl) == "" {
		logger.Warn("load prompt %s: %v; using default", driven.PromptAnswerSystem, err)
		return DefaultAnswerPrompt
	}
	return tpl
}

// renderPrompt substitutes the first %s in tpl with context. Templates
// without a placeholder get the context appended.
func renderPrompt(tpl, context string) string {
	if strings.Contains(tpl, "%s") {
		return strings.Replace(tpl, "%s", context, 1)
	}
	return tpl + "\n\nContext:\n" + context
}
