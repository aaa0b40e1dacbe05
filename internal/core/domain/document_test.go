package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		ID:        "doc-123",
		Source:    "report.pdf",
		Format:    FormatPDF,
		Page:      2,
		Content:   "page two",
		Metadata:  map[string]any{"author": "Jane"},
		CreatedAt: now,
	}

	assert.Equal(t, "doc-123", doc.ID)
	assert.Equal(t, "report.pdf", doc.Source)
	assert.Equal(t, FormatPDF, doc.Format)
	assert.Equal(t, 2, doc.Page)
	assert.Equal(t, "page two", doc.Content)
	assert.Equal(t, "Jane", doc.Metadata["author"])
	assert.Equal(t, now, doc.CreatedAt)
}

func TestChunk_Location(t *testing.T) {
	tests := []struct {
		name     string
		chunk    Chunk
		expected string
	}{
		{"paged", Chunk{Source: "report.pdf", Page: 3}, "report.pdf p.3"},
		{"unpaged", Chunk{Source: "notes.txt"}, "notes.txt"},
		{"empty", Chunk{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.chunk.Location())
		})
	}
}
