package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns uploaded files into indexed chunks.
type IngestService struct {
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	index      driving.VectorIndex
	tempDir    string
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithTempDir stages uploads under dir instead of the system temp directory.
func WithTempDir(dir string) IngestOption {
	return func(s *IngestService) { s.tempDir = dir }
}

// NewIngestService creates an ingest service.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	index driving.VectorIndex,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		extractors: extractors,
		pipeline:   pipeline,
		index:      index,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest indexes the uploads the session has not seen yet.
//
// Each new upload with a supported extension is copied to a temporary file
// named after its extension; the upload name is never used as a path. The
// temporary files are removed before Ingest returns, including on panic.
// Only files whose chunks were indexed are marked processed.
func (s *IngestService) Ingest(ctx context.Context, session driving.ProcessedSet, uploads []driving.Upload) (*driving.IngestReport, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil: %w", domain.ErrInvalidInput)
	}
	if s.extractors == nil {
		return nil, fmt.Errorf("extractor registry not configured")
	}

	logger.Section("Ingest")
	report := &driving.IngestReport{}

	var staged []domain.SourceFile
	defer func() {
		for _, f := range staged {
			if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Warn("remove temp file %s: %v", f.Path, err)
			}
		}
	}()

	seen := make(map[string]bool, len(uploads))
	for _, up := range uploads {
		if session.IsProcessed(up.Name) || seen[up.Name] {
			logger.Debug("skip %s: already processed", up.Name)
			report.AlreadyProcessed = append(report.AlreadyProcessed, up.Name)
			continue
		}
		seen[up.Name] = true

		format := domain.FormatFromName(up.Name)
		if _, ok := s.extractors.Lookup(format); !ok {
			logger.Debug("skip %s: unsupported format %q", up.Name, format)
			report.Unsupported = append(report.Unsupported, up.Name)
			continue
		}

		path, err := s.stage(up, format)
		if err != nil {
			logger.Error("stage %s: %v", up.Name, err)
			report.Failed = append(report.Failed, driving.FileFailure{Source: up.Name, Err: err})
			continue
		}
		staged = append(staged, domain.SourceFile{Path: path, Source: up.Name})
	}

	if len(staged) == 0 {
		return report, nil
	}

	n, failures, err := s.ProcessFiles(ctx, staged)
	if err != nil {
		return nil, err
	}
	report.Chunks = n
	report.Failed = append(report.Failed, failures...)

	failed := make(map[string]bool, len(failures))
	for _, f := range failures {
		failed[f.Source] = true
	}
	for _, f := range staged {
		if !failed[f.Source] {
			report.Files = append(report.Files, f.Source)
		}
	}
	session.MarkProcessed(report.Files...)

	logger.Info("ingested %d files into %d chunks (%d failed)", len(report.Files), report.Chunks, len(report.Failed))
	return report, nil
}

// IngestFiles ingests files already on disk through the same path as
// uploads: each file's Source is its upload name.
func (s *IngestService) IngestFiles(ctx context.Context, session driving.ProcessedSet, files []domain.SourceFile) (*driving.IngestReport, error) {
	uploads := make([]driving.Upload, len(files))
	readers := make([]*fileReader, len(files))
	for i, f := range files {
		readers[i] = &fileReader{path: f.Path}
		uploads[i] = driving.Upload{Name: f.Source, Content: readers[i]}
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	return s.Ingest(ctx, session, uploads)
}

// fileReader opens its file on first read, so skipped files are never opened.
type fileReader struct {
	path string
	f    *os.File
}

func (r *fileReader) Read(p []byte) (int, error) {
	if r.f == nil {
		f, err := os.Open(r.path)
		if err != nil {
			return 0, err
		}
		r.f = f
	}
	return r.f.Read(p)
}

func (r *fileReader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// stage copies an upload to a new temporary file and returns its path.
func (s *IngestService) stage(up driving.Upload, format domain.Format) (string, error) {
	if up.Content == nil {
		return "", fmt.Errorf("no content: %w", domain.ErrInvalidInput)
	}

	f, err := os.CreateTemp(s.tempDir, "semsearch-*"+format.Extension())
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	if _, err := io.Copy(f, up.Content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

// ProcessFiles extracts, normalises and chunks every file, then indexes all
// chunks with a single VectorIndex.Add call.
//
// A file that cannot be extracted or chunked is reported as a failure and
// skipped. Index failures, such as an unreachable embedding backend, abort
// the call and are returned.
func (s *IngestService) ProcessFiles(ctx context.Context, files []domain.SourceFile) (int, []driving.FileFailure, error) {
	if s.extractors == nil || s.pipeline == nil {
		return 0, nil, fmt.Errorf("ingest pipeline not configured")
	}
	if s.index == nil {
		return 0, nil, domain.ErrVectorIndexUnavailable
	}

	var (
		all      []domain.Chunk
		failures []driving.FileFailure
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return 0, failures, err
		}

		chunks, err := s.processFile(ctx, file)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, failures, ctxErr
			}
			logger.Error("%v", err)
			failures = append(failures, driving.FileFailure{Source: file.Source, Err: err})
			continue
		}
		logger.Debug("%s: %d chunks", file.Source, len(chunks))
		all = append(all, chunks...)
	}

	if len(all) == 0 {
		return 0, failures, nil
	}

	if _, err := s.index.Add(ctx, all); err != nil {
		return 0, failures, err
	}
	return len(all), failures, nil
}

func (s *IngestService) processFile(ctx context.Context, file domain.SourceFile) ([]domain.Chunk, error) {
	format := domain.FormatFromName(file.Path)
	if format == "" {
		format = domain.FormatFromName(file.Source)
	}

	extractor, ok := s.extractors.Lookup(format)
	if !ok {
		return nil, &domain.ExtractionError{Source: file.Source, Format: format, Err: domain.ErrUnsupportedFormat}
	}

	docs, err := extractor.Extract(ctx, file.Path)
	if err != nil {
		return nil, &domain.ExtractionError{Source: file.Source, Format: format, Err: err}
	}

	var chunks []domain.Chunk
	for i := range docs {
		doc := docs[i]
		doc.Source = file.Source
		if strings.TrimSpace(doc.Content) == "" {
			logger.Debug("%s: page %d has no text", file.Source, doc.Page)
			continue
		}

		docChunks, err := s.pipeline.Process(ctx, &doc)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", file.Source, err)
		}
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}
