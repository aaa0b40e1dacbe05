// Package chunker splits document text into overlapping chunks at the
// largest natural boundary that fits: paragraph, line, sentence, word, then
// character.
package chunker

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 75

// DefaultSeparators are tried in order, largest boundary first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Processor splits document content into overlapping chunks.
// Sizes and offsets are measured in runes. It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the boundary list. Empty separators are ignored.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		p.separators = p.separators[:0]
		for _, s := range seps {
			if s != "" {
				p.separators = append(p.separators, s)
			}
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: append([]string(nil), DefaultSeparators...),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
//
// Each chunk after the first opens with up to the configured overlap of the
// previous chunk's tail, cut at a word boundary, followed by whole new
// segments. Removing each chunk's shared prefix and concatenating yields the
// document text again, and every chunk starts strictly after the previous one.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	segments := p.split(doc.Content, p.separators)
	runes := []rune(doc.Content)

	// offsets[i] is where segment i starts; offsets[len(segments)] is the end.
	offsets := make([]int, len(segments)+1)
	for i, seg := range segments {
		offsets[i+1] = offsets[i] + utf8.RuneCountInString(seg)
	}

	var chunks []domain.Chunk
	prevStart := -1
	for seg := 0; seg < len(segments); {
		start := offsets[seg]
		if len(chunks) > 0 {
			start = p.overlapStart(runes, offsets[seg], offsets[seg+1], prevStart)
		}

		end := seg + 1
		for end < len(segments) && offsets[end+1]-start <= p.chunkSize {
			end++
		}

		chunks = append(chunks, p.newChunk(doc, string(runes[start:offsets[end]]), len(chunks), start))
		prevStart, seg = start, end
	}

	return chunks, nil
}

// overlapStart picks where a chunk whose new text begins at cut should start.
// It returns the earliest word boundary that keeps the shared prefix within
// the overlap, leaves room for the segment ending at segEnd and stays after
// the previous chunk's start. With no such boundary the chunk starts at cut.
func (p *Processor) overlapStart(runes []rune, cut, segEnd, prevStart int) int {
	lo := max(cut-p.overlap, segEnd-p.chunkSize, prevStart+1)
	for i := lo; i < cut; i++ {
		if i > 0 && unicode.IsSpace(runes[i-1]) && !unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return cut
}

func (p *Processor) newChunk(doc *domain.Document, content string, index, offset int) domain.Chunk {
	meta := map[string]any{
		domain.MetaSource:      doc.Source,
		domain.MetaStartOffset: offset,
		domain.MetaChunkIndex:  index,
	}
	if doc.Page > 0 {
		meta[domain.MetaPage] = doc.Page
	}
	if doc.Format != "" {
		meta[domain.MetaFormat] = doc.Format.String()
	}

	return domain.Chunk{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		Content:     content,
		Position:    index,
		StartOffset: offset,
		Source:      doc.Source,
		Page:        doc.Page,
		Metadata:    meta,
	}
}

// split breaks text into segments of at most chunkSize runes that
// concatenate back to text. Each separator stays on the segment before it.
func (p *Processor) split(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= p.chunkSize {
		return []string{text}
	}

	for i, sep := range seps {
		if !strings.Contains(text, sep) {
			continue
		}
		var out []string
		for _, piece := range splitAfter(text, sep) {
			if utf8.RuneCountInString(piece) <= p.chunkSize {
				out = append(out, piece)
				continue
			}
			out = append(out, p.split(piece, seps[i+1:])...)
		}
		return out
	}

	return splitRunes(text, p.chunkSize)
}

// splitAfter is strings.SplitAfter without the trailing empty piece.
func splitAfter(text, sep string) []string {
	pieces := strings.SplitAfter(text, sep)
	if n := len(pieces); n > 0 && pieces[n-1] == "" {
		pieces = pieces[:n-1]
	}
	return pieces
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/size+1)
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
