package mcp

import (
	"context"
	"errors"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/core/services"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer    *domain.Answer
	err       error
	questions []string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

// mockVectorIndex is a mock implementation of driving.VectorIndex.
type mockVectorIndex struct {
	results []domain.SearchResult
	err     error
	count   int
	lastK   int
}

func (m *mockVectorIndex) Add(_ context.Context, _ []domain.Chunk) ([]string, error) {
	return nil, m.err
}

func (m *mockVectorIndex) Search(_ context.Context, _ string, k int) ([]domain.SearchResult, error) {
	m.lastK = k
	return m.results, m.err
}

func (m *mockVectorIndex) Reset(_ context.Context) error { return m.err }

func (m *mockVectorIndex) Count(_ context.Context) int { return m.count }

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *driving.IngestReport
	err    error
	files  []domain.SourceFile
}

func (m *mockIngestService) Ingest(_ context.Context, _ driving.ProcessedSet, _ []driving.Upload) (*driving.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) IngestFiles(_ context.Context, session driving.ProcessedSet, files []domain.SourceFile) (*driving.IngestReport, error) {
	m.files = files
	if m.err != nil {
		return nil, m.err
	}
	session.MarkProcessed(m.report.Files...)
	return m.report, nil
}

func (m *mockIngestService) ProcessFiles(_ context.Context, _ []domain.SourceFile) (int, []driving.FileFailure, error) {
	return 0, nil, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats domain.IndexStats
}

func (m *mockIndexService) Reset(_ context.Context, session driving.ProcessedSet) error {
	session.Reset()
	return nil
}

func (m *mockIndexService) Count(_ context.Context) int { return m.stats.Chunks }

func (m *mockIndexService) Stats(_ context.Context, session driving.ProcessedSet) domain.IndexStats {
	stats := m.stats
	stats.Files = session.Len()
	return stats
}

// failingStream fails after yielding its fragments.
type failingStream struct {
	domain.TextStream
}

func (f *failingStream) Err() error { return errors.New("connection reset") }

func newAnswer(text string, results ...domain.SearchResult) *domain.Answer {
	return &domain.Answer{
		Question:  "q",
		Retrieval: domain.RetrievalResult{Question: "q", Results: results},
		Stream:    services.NewStaticStream(text),
	}
}

func newTestServer(ports *Ports) *Server {
	if ports.Answer == nil {
		ports.Answer = &mockAnswerService{answer: newAnswer(domain.NoDocumentsResponse)}
	}
	if ports.Index == nil {
		ports.Index = &mockVectorIndex{}
	}
	server, err := NewServer(ports)
	if err != nil {
		panic(err)
	}
	return server
}
