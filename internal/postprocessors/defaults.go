package postprocessors

import (
	"fmt"

	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/postprocessors/chunker"
	"github.com/FamilOrujov/semsearch/internal/postprocessors/spacing"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("spacing", buildSpacing)
	r.Register("chunker", buildChunker)
}

func buildSpacing(_ map[string]any) (driven.PostProcessor, error) {
	return spacing.New(), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 500)
//   - overlap (int): Overlapping characters between chunks (default: 75)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	size, hasSize := getIntFromConfig(cfg, "chunk_size")
	overlap, hasOverlap := getIntFromConfig(cfg, "overlap")

	if hasSize {
		if size <= 0 {
			return nil, fmt.Errorf("chunker: chunk_size must be positive, got %d", size)
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if hasOverlap {
		if overlap < 0 {
			return nil, fmt.Errorf("chunker: overlap must not be negative, got %d", overlap)
		}
		if hasSize && overlap >= size {
			return nil, fmt.Errorf("chunker: overlap %d must be smaller than chunk_size %d", overlap, size)
		}
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
