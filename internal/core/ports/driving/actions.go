package driving

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// ResultActionService provides actions on answers and retrieved chunks.
// This is used by the TUI and CLI adapters.
type ResultActionService interface {
	// CopyText copies text to the system clipboard.
	CopyText(ctx context.Context, text string) error

	// CopyResult copies a retrieved chunk's content to the system clipboard.
	CopyResult(ctx context.Context, result *domain.SearchResult) error
}
