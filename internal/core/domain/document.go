package domain

import (
	"strconv"
	"time"
)

// Metadata keys attached to every chunk.
const (
	MetaSource      = "source"
	MetaStartOffset = "start_offset"
	MetaChunkIndex  = "chunk_index"
	MetaPage        = "page"
	MetaFormat      = "format"
)

// Document is the text extracted from a source file.
// It is created on ingest, immutable once extracted and discarded after chunking.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source identifies where the text came from (upload name or path).
	Source string

	// Format is the extraction format that produced this document.
	Format Format

	// Page is the 1-based page number for paged formats, 0 otherwise.
	Page int

	// Content is the full text after normalisation.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was extracted.
	CreatedAt time.Time
}

// Location formats the document's source and page like Chunk.Location.
func (d *Document) Location() string {
	return Chunk{Source: d.Source, Page: d.Page}.Location()
}

// Chunk is a bounded text segment derived from a Document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the chunk index within its document.
	Position int

	// StartOffset is the character (rune) offset of Content within the document.
	StartOffset int

	// Source is inherited from the parent Document.
	Source string

	// Page is inherited from the parent Document.
	Page int

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// Location returns a short human-readable reference such as "report.pdf p.2".
func (c Chunk) Location() string {
	if c.Page > 0 {
		return c.Source + " p." + strconv.Itoa(c.Page)
	}
	return c.Source
}

// SourceFile is a file on disk ready for extraction.
type SourceFile struct {
	// Path is where the bytes can be read.
	Path string

	// Source is the identifier recorded on every chunk from this file.
	Source string
}
