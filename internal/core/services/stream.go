package services

import (
	"strings"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// staticStream yields a fixed list of fragments.
type staticStream struct {
	fragments []string
	pos       int
	current   string
	closed    bool
}

// NewStaticStream returns a stream that yields the given fragments in order.
func NewStaticStream(fragments ...string) domain.TextStream {
	return &staticStream{fragments: fragments}
}

func (s *staticStream) Next() bool {
	if s.closed || s.pos >= len(s.fragments) {
		s.current = ""
		return false
	}
	s.current = s.fragments[s.pos]
	s.pos++
	return true
}

func (s *staticStream) Fragment() string { return s.current }

func (s *staticStream) Err() error { return nil }

func (s *staticStream) Close() error {
	s.closed = true
	return nil
}

// Collect drains stream, calling fn (if non-nil) for each fragment as it
// arrives, and returns the accumulated text. The stream is closed on return.
// On a mid-stream failure the text received so far is returned with the error.
func Collect(stream domain.TextStream, fn func(fragment string)) (string, error) {
	defer stream.Close()

	var b strings.Builder
	for stream.Next() {
		frag := stream.Fragment()
		b.WriteString(frag)
		if fn != nil {
			fn(frag)
		}
	}
	return b.String(), stream.Err()
}
