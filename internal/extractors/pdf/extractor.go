// Package pdf extracts text from PDF files, one document per page.
package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gopdf "github.com/ledongthuc/pdf"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents using the pure-Go ledongthuc/pdf reader.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Extract returns one document per page, in page order. Pages are numbered
// from 1. Pages with no text layer are returned with empty content.
func (e *Extractor) Extract(ctx context.Context, path string) (docs []domain.Document, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			docs, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := gopdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	logger.Debug("pdf: %s has %d pages", path, pages)

	fonts := make(map[string]*gopdf.Font)
	now := time.Now()
	docs = make([]domain.Document, 0, pages)

	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		docs = append(docs, domain.Document{
			ID:      uuid.New().String(),
			Format:  domain.FormatPDF,
			Page:    i,
			Content: text,
			Metadata: map[string]any{
				domain.MetaFormat: domain.FormatPDF.String(),
				domain.MetaPage:   i,
			},
			CreatedAt: now,
		})
	}

	return docs, nil
}
