package memory

import (
	"maps"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. It backs --ephemeral runs and tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: map[string]any{}}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	maps.Copy(s.values, values)
	s.mu.Unlock()
	return nil
}

// Path reports ":memory:" since nothing is written.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
