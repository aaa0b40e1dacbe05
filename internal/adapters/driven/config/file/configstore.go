package file

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const configFileName = "config.toml"

// ConfigStore keeps settings in a TOML file. Dot-path keys such as
// "embedding.model" are stored as tables so the file stays hand-editable.
type ConfigStore struct {
	path string

	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore opens <dir>/config.toml, creating dir if needed.
// An empty dir selects ~/.semsearch. A missing file is an empty config;
// a malformed one is an error.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".semsearch")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, configFileName)}
	values, err := readTOML(s.path)
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Update merges values and rewrites the file. On a failed write the
// in-memory settings are left as they were.
func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.values)
	maps.Copy(next, values)
	if err := writeTOML(s.path, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

func readTOML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return flattenMap(tree, ""), nil
}

// writeTOML replaces path through a temporary file in the same directory,
// so a crash mid-write never leaves a truncated config behind.
func writeTOML(path string, values map[string]any) error {
	data, err := toml.Marshal(nestMap(values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(tree map[string]any, prefix string) map[string]any {
	flat := map[string]any{}
	var walk func(node map[string]any, prefix string)
	walk = func(node map[string]any, prefix string) {
		for k, v := range node {
			if prefix != "" {
				k = prefix + "." + k
			}
			if child, ok := v.(map[string]any); ok {
				walk(child, k)
				continue
			}
			flat[k] = v
		}
	}
	walk(tree, prefix)
	return flat
}

// nestMap reverses flattenMap. When a key is both a value and the prefix
// of another key ("e" and "e.f"), the value wins and the longer key is dropped.
func nestMap(flat map[string]any) map[string]any {
	tree := map[string]any{}
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		insert(tree, key, flat[key])
	}
	return tree
}

func insert(node map[string]any, key string, value any) {
	head, rest, nested := strings.Cut(key, ".")
	if !nested {
		node[head] = value
		return
	}
	existing, present := node[head]
	child, isTable := existing.(map[string]any)
	switch {
	case !present:
		child = map[string]any{}
		node[head] = child
	case !isTable:
		return
	}
	insert(child, rest, value)
}
