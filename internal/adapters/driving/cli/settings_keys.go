package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/services"
)

type setter func(s *domain.AppSettings, value string) error

// setters maps every key accepted by 'settings set' to the field it writes.
var setters = map[string]setter{
	services.KeyEmbedProvider: func(s *domain.AppSettings, v string) (err error) {
		s.Embedding.Provider, err = parseProvider(v)
		return err
	},
	services.KeyEmbedModel:   func(s *domain.AppSettings, v string) error { s.Embedding.Model = v; return nil },
	services.KeyEmbedBaseURL: func(s *domain.AppSettings, v string) error { s.Embedding.BaseURL = v; return nil },
	services.KeyEmbedAPIKey:  func(s *domain.AppSettings, v string) error { s.Embedding.APIKey = v; return nil },
	services.KeyEmbedRPS: func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return invalid(services.KeyEmbedRPS, v, "")
		}
		s.Embedding.RequestsPerSecond = f
		return nil
	},

	services.KeyLLMProvider: func(s *domain.AppSettings, v string) (err error) {
		s.LLM.Provider, err = parseProvider(v)
		return err
	},
	services.KeyLLMModel:   func(s *domain.AppSettings, v string) error { s.LLM.Model = v; return nil },
	services.KeyLLMBaseURL: func(s *domain.AppSettings, v string) error { s.LLM.BaseURL = v; return nil },
	services.KeyLLMAPIKey:  func(s *domain.AppSettings, v string) error { s.LLM.APIKey = v; return nil },

	// A profile replaces explicit sizes.
	services.KeyChunkProfile: func(s *domain.AppSettings, v string) error {
		p := domain.ChunkProfile(v)
		if !p.IsValid() {
			return invalid("chunk profile", v, "want fine or coarse")
		}
		s.Chunking = domain.ChunkingSettings{Profile: p}
		return nil
	},
	services.KeyChunkSize: func(s *domain.AppSettings, v string) (err error) {
		s.Chunking.ChunkSize, err = parseInt(services.KeyChunkSize, v, 1)
		return err
	},
	services.KeyChunkOverlap: func(s *domain.AppSettings, v string) (err error) {
		s.Chunking.ChunkOverlap, err = parseInt(services.KeyChunkOverlap, v, 0)
		return err
	},
	services.KeyTopK: func(s *domain.AppSettings, v string) (err error) {
		s.Retrieval.TopK, err = parseInt(services.KeyTopK, v, 1)
		return err
	},

	services.KeyIndexBackend: func(s *domain.AppSettings, v string) error {
		b := domain.IndexBackend(v)
		if !b.IsValid() {
			return invalid("index backend", v, "want sqlite or memory")
		}
		s.Index.Backend = b
		return nil
	},
	services.KeyIndexDir: func(s *domain.AppSettings, v string) error { s.Index.Dir = v; return nil },

	services.KeyConnectAttempts: func(s *domain.AppSettings, v string) error {
		n, err := parseInt(services.KeyConnectAttempts, v, 1)
		s.Backend.ConnectAttempts = uint(n)
		return err
	},
	services.KeyConnectDelayMilli: func(s *domain.AppSettings, v string) error {
		ms, err := parseInt(services.KeyConnectDelayMilli, v, 0)
		s.Backend.ConnectDelay = time.Duration(ms) * time.Millisecond
		return err
	},
}

// applySetting writes a single key onto s. s is untouched on error.
func applySetting(s *domain.AppSettings, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting: %s", key)
	}
	next := *s
	if err := set(&next, value); err != nil {
		return err
	}
	*s = next
	return nil
}

// settingKeysHelp lists the keys grouped by section, one section per line.
func settingKeysHelp() string {
	var b strings.Builder
	section := ""
	for _, key := range slices.Sorted(maps.Keys(setters)) {
		prefix, _, _ := strings.Cut(key, ".")
		if prefix != section {
			if section != "" {
				b.WriteByte('\n')
			}
			b.WriteString(" ")
			section = prefix
		}
		b.WriteString(" " + key)
	}
	b.WriteByte('\n')
	return b.String()
}

func parseProvider(v string) (domain.AIProvider, error) {
	p := domain.AIProvider(v)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid provider: %s", v)
	}
	return p, nil
}

func parseInt(key, v string, floor int) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		hint := "must be a non-negative integer"
		if floor > 0 {
			hint = "must be a positive integer"
		}
		return 0, invalid(key, v, hint)
	}
	return n, nil
}

func invalid(what, value, hint string) error {
	if hint == "" {
		return fmt.Errorf("invalid %s: %s", what, value)
	}
	return fmt.Errorf("invalid %s: %s (%s)", what, value, hint)
}
