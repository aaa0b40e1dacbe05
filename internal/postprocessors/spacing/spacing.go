// Package spacing repairs text whose words were split into spaced-out letters,
// a common artefact of PDF text extraction ("H e l l o  W o r l d").
package spacing

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// SingleCharRatio is the share of one-character tokens above which
// text is treated as letter-spaced.
const SingleCharRatio = 0.4

// Normalise collapses letter-spaced text: double spaces become word breaks
// and single spaces are removed. Text below the SingleCharRatio threshold is
// returned unchanged.
//
// The repair is applied until the text stops changing, so
// Normalise(Normalise(s)) == Normalise(s). Each changing pass shortens the
// text, which bounds the loop.
//
// Text made mostly of one-letter words ("a b c") is also collapsed.
func Normalise(text string) string {
	for {
		repaired := repair(text)
		if repaired == text {
			return text
		}
		text = repaired
	}
}

// NormalisePtr is Normalise for optional text. nil stays nil.
func NormalisePtr(text *string) *string {
	if text == nil {
		return nil
	}
	s := Normalise(*text)
	return &s
}

func repair(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return text
	}

	single := 0
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) == 1 {
			single++
		}
	}
	if float64(single)/float64(len(tokens)) <= SingleCharRatio {
		return text
	}

	words := strings.Split(text, "  ")
	for i, w := range words {
		words[i] = strings.ReplaceAll(w, " ", "")
	}
	return strings.Join(words, " ")
}

// Processor applies Normalise to a document before chunking.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a spacing processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "spacing"
}

// Process rewrites doc.Content in place and passes chunks through.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	doc.Content = Normalise(doc.Content)
	return chunks, nil
}
