package driven

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// Connector discovers local files that can be ingested.
type Connector interface {
	// Type returns the connector type identifier (e.g., "filesystem").
	Type() string

	// Scan lists every supported file currently under the connector's root.
	// Sources are root-relative, slash-separated paths.
	Scan(ctx context.Context) ([]domain.SourceFile, error)

	// Watch emits batches of created or modified files until ctx is done.
	// Events are debounced so a file written in several steps arrives once.
	// Both channels are closed when watching stops.
	Watch(ctx context.Context) (<-chan []domain.SourceFile, <-chan error, error)

	// Close releases resources.
	Close() error
}
