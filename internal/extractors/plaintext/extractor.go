// Package plaintext extracts UTF-8 text files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const bom = "\uFEFF"

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatText}
}

// Extract reads the whole file as one document.
// Invalid UTF-8 sequences are replaced with U+FFFD and CRLF line endings
// become LF.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}

	content := decode(data)

	return []domain.Document{{
		ID:        uuid.New().String(),
		Format:    domain.FormatText,
		Content:   content,
		Metadata:  map[string]any{domain.MetaFormat: domain.FormatText.String()},
		CreatedAt: time.Now(),
	}}, nil
}

func decode(data []byte) string {
	s := string(data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	s = strings.TrimPrefix(s, bom)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return s
}
