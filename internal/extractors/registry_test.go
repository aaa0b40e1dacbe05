package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

type stubExtractor struct {
	formats []domain.Format
	name    string
}

func (s *stubExtractor) Formats() []domain.Format { return s.formats }
func (s *stubExtractor) Extract(_ context.Context, _ string) ([]domain.Document, error) {
	return []domain.Document{{Content: s.name}}, nil
}

func TestNewRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Formats())

	_, ok := r.Lookup(domain.FormatPDF)
	assert.False(t, ok)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []domain.Format{domain.FormatDOCX, domain.FormatPDF, domain.FormatText}, r.Formats())
	for _, f := range domain.AllFormats() {
		e, ok := r.Lookup(f)
		require.True(t, ok, "format %s", f)
		assert.Contains(t, e.Formats(), f)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{formats: []domain.Format{domain.FormatText}, name: "first"})
	r.Register(&stubExtractor{formats: []domain.Format{domain.FormatText}, name: "second"})

	e, ok := r.Lookup(domain.FormatText)
	require.True(t, ok)
	docs, err := e.Extract(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "second", docs[0].Content)
}

func TestRegistry_MultipleFormats(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{formats: []domain.Format{"md", "markdown"}})

	assert.Equal(t, []domain.Format{"markdown", "md"}, r.Formats())
}

func TestRegistry_Supports(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name     string
		expected bool
	}{
		{"report.pdf", true},
		{"Report.PDF", true},
		{"notes.txt", true},
		{"letter.docx", true},
		{"table.csv", false},
		{"archive.tar.gz", false},
		{"README", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Supports(tt.name))
		})
	}
}
