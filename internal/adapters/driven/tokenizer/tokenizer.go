// Package tokenizer estimates prompt sizes with tiktoken.
package tokenizer

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// DefaultEncoding is used for every model. Counts for non-OpenAI models are estimates.
const DefaultEncoding = "cl100k_base"

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

type encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
}

// Counter counts tokens with a tiktoken encoding. The encoding is loaded
// on first use; if it cannot be loaded, counts fall back to a
// four-characters-per-token estimate.
type Counter struct {
	encoding string
	load     func(string) (encoder, error)

	once sync.Once
	enc  encoder
}

// NewCounter creates a counter for the named encoding.
// An empty name selects DefaultEncoding.
func NewCounter(encoding string) *Counter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Counter{encoding: encoding, load: loadEncoding}
}

func loadEncoding(name string) (encoder, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %s: %w", name, err)
	}
	return enc, nil
}

// Count returns the number of tokens in text. A nil Counter returns 0.
func (c *Counter) Count(text string) int {
	if c == nil || text == "" {
		return 0
	}

	c.once.Do(func() {
		enc, err := c.load(c.encoding)
		if err != nil {
			logger.Debug("tokenizer: %v; using estimate", err)
			return
		}
		c.enc = enc
	})

	if c.enc == nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate approximates a token count as one token per four characters.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
