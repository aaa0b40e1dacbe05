package driving

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// Retriever fetches the chunks relevant to a question.
type Retriever interface {
	// Retrieve returns up to the configured top-k chunks, nearest first.
	Retrieve(ctx context.Context, question string) (domain.RetrievalResult, error)
}

// AnswerService produces grounded, streamed answers.
type AnswerService interface {
	// Answer retrieves context for the question and starts the answer stream.
	// When nothing is retrieved the stream yields domain.NoDocumentsResponse
	// without calling the language model. The caller must Close the stream.
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}
