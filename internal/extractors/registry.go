// Package extractors provides the format strategy table used by the ingest
// pipeline. Each extractor knows how to turn one file format into text.
//
// Extractors are registered with the Registry at startup.
package extractors

import (
	"sort"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/extractors/docx"
	"github.com/FamilOrujov/semsearch/internal/extractors/pdf"
	"github.com/FamilOrujov/semsearch/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction by format.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.Format]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.Format]driven.Extractor),
	}
}

// NewDefaultRegistry creates a registry with the built-in PDF, text and DOCX extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(plaintext.New())
	r.Register(docx.New())
	return r
}

// Register adds an extractor for every format it reports.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range extractor.Formats() {
		r.extractors[f] = extractor
	}
}

// Lookup returns the extractor for a format.
func (r *Registry) Lookup(format domain.Format) (driven.Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[format]
	return e, ok
}

// Formats returns all registered formats, sorted.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]domain.Format, 0, len(r.extractors))
	for f := range r.extractors {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Supports reports whether a file name has a registered extractor.
func (r *Registry) Supports(name string) bool {
	_, ok := r.Lookup(domain.FormatFromName(name))
	return ok
}
