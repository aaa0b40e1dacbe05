// Package docx extracts body paragraphs from Office Open XML documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrNoDocumentPart is returned for archives without word/document.xml.
var ErrNoDocumentPart = errors.New("word/document.xml not found")

const documentPart = "word/document.xml"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Extract returns a single document with one line per body paragraph.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer reader.Close()

	content, err := extractDocumentText(&reader.Reader)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{domain.MetaFormat: domain.FormatDOCX.String()}
	if title := extractTitle(&reader.Reader); title != "" {
		meta["title"] = title
	}

	return []domain.Document{{
		ID:        uuid.New().String(),
		Format:    domain.FormatDOCX,
		Content:   content,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}}, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		content, err := readPart(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", documentPart, err)
		}

		return parseDocumentXML(content)
	}
	return "", ErrNoDocumentPart
}

func readPart(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs       []run       `xml:"r"`
	Hyperlinks []hyperlink `xml:"hyperlink"`
}

type hyperlink struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins body paragraphs with newlines.
// Hyperlink text is appended after the paragraph's plain runs.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", documentPart, err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		writeRuns(&result, para.Runs)
		for _, link := range para.Hyperlinks {
			writeRuns(&result, link.Runs)
		}
	}

	return strings.TrimSpace(result.String()), nil
}

func writeRuns(b *strings.Builder, runs []run) {
	for _, r := range runs {
		for _, text := range r.Text {
			b.WriteString(text.Content)
		}
	}
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml, if present.
func extractTitle(reader *zip.Reader) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		content, err := readPart(file)
		if err != nil {
			return ""
		}

		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil {
			return strings.TrimSpace(core.Title)
		}
		return ""
	}
	return ""
}
