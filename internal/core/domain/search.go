package domain

import "strings"

// ContextSeparator separates retrieved chunks inside the answer prompt.
const ContextSeparator = "\n\n---\n\n"

// NoDocumentsResponse is returned instead of calling the language model
// when nothing could be retrieved.
const NoDocumentsResponse = "I don't have any documents to search. Please upload some files first."

// SearchResult is a stored chunk paired with its similarity to a query.
type SearchResult struct {
	// Chunk is the matched chunk, including its text and metadata.
	Chunk Chunk

	// Score is the cosine similarity to the query (higher is nearer).
	Score float64
}

// RetrievalResult is the ordered set of chunks retrieved for a question.
// Results are nearest first and never longer than the requested k.
type RetrievalResult struct {
	// Question is the text that was embedded for the query.
	Question string

	// Results are ordered by non-increasing Score.
	Results []SearchResult
}

// IsEmpty returns true when nothing was retrieved.
func (r RetrievalResult) IsEmpty() bool {
	return len(r.Results) == 0
}

// Context joins the retrieved chunk texts with ContextSeparator.
func (r RetrievalResult) Context() string {
	parts := make([]string, len(r.Results))
	for i := range r.Results {
		parts[i] = r.Results[i].Chunk.Content
	}
	return strings.Join(parts, ContextSeparator)
}

// Sources returns the distinct chunk locations in retrieval order.
func (r RetrievalResult) Sources() []string {
	seen := make(map[string]bool, len(r.Results))
	var sources []string
	for i := range r.Results {
		loc := r.Results[i].Chunk.Location()
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		sources = append(sources, loc)
	}
	return sources
}

// TextStream is a pull-based, finite, non-restartable sequence of text fragments.
//
// Next advances to the next fragment and returns false once the stream is
// exhausted or has failed; Err distinguishes the two. Fragment returns the
// current fragment and is only valid after Next returned true. Close releases
// the underlying connection and may be called at any point.
type TextStream interface {
	Next() bool
	Fragment() string
	Err() error
	Close() error
}

// Answer is a grounded answer to a question.
type Answer struct {
	// Question is the question that was asked.
	Question string

	// Retrieval holds the chunks that grounded the answer.
	Retrieval RetrievalResult

	// Context is the joined chunk text placed in the system prompt.
	// Empty when nothing was retrieved.
	Context string

	// PromptTokens is an estimate of the prompt size, 0 when unknown.
	PromptTokens int

	// Stream yields the answer text fragment by fragment.
	Stream TextStream
}

// Grounded returns true if the answer was produced from retrieved context.
func (a *Answer) Grounded() bool {
	return !a.Retrieval.IsEmpty()
}
