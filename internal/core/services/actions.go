package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService copies answers and chunks to the clipboard.
type ResultActionService struct {
	// copy is replaced in tests.
	copy func(text string) error
}

// NewResultActionService creates a new result action service.
func NewResultActionService() *ResultActionService {
	return &ResultActionService{copy: copyToClipboard}
}

// CopyText copies text to the system clipboard.
func (s *ResultActionService) CopyText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to copy: %w", domain.ErrInvalidInput)
	}
	return s.copy(text)
}

// CopyResult copies the chunk content with its location as a trailer.
func (s *ResultActionService) CopyResult(ctx context.Context, result *domain.SearchResult) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}
	text := result.Chunk.Content
	if loc := result.Chunk.Location(); loc != "" {
		text += "\n\n(" + loc + ")"
	}
	return s.CopyText(ctx, text)
}

// copyToClipboard copies text to the system clipboard.
func copyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found (install wl-clipboard, xclip or xsel)")
	}
	return clipboard.WriteAll(text)
}
