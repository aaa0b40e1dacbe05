package services

import (
	"sort"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// Ensure Session implements the interface.
var _ driving.ProcessedSet = (*Session)(nil)

// Session holds per-user state for the lifetime chosen by the caller:
// one CLI invocation, one TUI run or one MCP server.
// It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	processed map[string]struct{}
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{processed: make(map[string]struct{})}
}

// IsProcessed reports whether source was already indexed in this session.
func (s *Session) IsProcessed(source string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.processed[source]
	return ok
}

// MarkProcessed records sources as indexed.
func (s *Session) MarkProcessed(sources ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range sources {
		s.processed[src] = struct{}{}
	}
}

// Processed returns the indexed sources, sorted.
func (s *Session) Processed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.processed))
	for src := range s.processed {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed sources.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processed)
}

// Reset forgets every indexed source.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = make(map[string]struct{})
}
