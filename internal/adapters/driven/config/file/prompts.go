package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompts are the known prompt names and their default text.
var builtinPrompts = map[string]string{
	driven.PromptAnswerSystem: driven.DefaultAnswerSystemPrompt,
}

const promptsReadme = `# semsearch prompts

Edit these files to change how answers are generated. Changes take effect on
the next command, or after /reset in the chat.

- answer_system.txt: system prompt for grounded answers. The first %s is
  replaced with the retrieved context; without one, the context is appended
  after the prompt. More than one %s is rejected.

Delete a file to restore its default.
`

// PromptStore serves prompt templates from <dir>/<name>.txt.
//
// The directory and default files are written on the first Load, never by
// the constructor. A file that is missing, empty or carries more than one
// %s placeholder is replaced by the built-in text.
type PromptStore struct {
	dir string

	setup    sync.Once
	setupErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir selects ~/.semsearch/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".semsearch", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := builtinPrompts[name]
	if !known {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}

	s.setup.Do(func() { s.setupErr = s.materialise() })
	if s.setupErr != nil {
		logger.Debug("prompts: %v, using built-in %s", s.setupErr, name)
		return builtin, nil
	}

	s.mu.RLock()
	text, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text = s.read(name, builtin)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = text
	return text, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) read(name, builtin string) string {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("prompt %s: %v", name, err)
		}
		return builtin
	}

	text := strings.TrimSpace(string(data))
	switch {
	case text == "":
		logger.Warn("prompt %s is empty, using the built-in prompt", name)
		return builtin
	case strings.Count(text, "%s") > 1:
		logger.Warn("prompt %s has more than one %%s, using the built-in prompt", name)
		return builtin
	}
	return text
}

// materialise creates the directory, the default prompt files and a README.
// Existing files are left alone.
func (s *PromptStore) materialise() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for name, text := range builtinPrompts {
		if err := writeIfMissing(s.path(name), text); err != nil {
			return err
		}
	}
	return writeIfMissing(filepath.Join(s.dir, "README.md"), promptsReadme)
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
