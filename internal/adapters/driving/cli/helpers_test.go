package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/core/services"
)

// mockVectorIndex implements driving.VectorIndex.
type mockVectorIndex struct {
	results []domain.SearchResult
	err     error

	mu        sync.Mutex
	lastQuery string
	lastK     int
}

func (m *mockVectorIndex) Add(_ context.Context, chunks []domain.Chunk) ([]string, error) {
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].ID
	}
	return ids, nil
}

func (m *mockVectorIndex) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	m.lastQuery, m.lastK = query, k
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockVectorIndex) Reset(context.Context) error { return nil }

func (m *mockVectorIndex) Count(context.Context) int { return len(m.results) }

// mockIndexService implements driving.IndexService.
type mockIndexService struct {
	chunks   int
	resetErr error
	resets   int
}

func (m *mockIndexService) Reset(_ context.Context, s driving.ProcessedSet) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets++
	m.chunks = 0
	s.Reset()
	return nil
}

func (m *mockIndexService) Count(context.Context) int { return m.chunks }

func (m *mockIndexService) Stats(_ context.Context, s driving.ProcessedSet) domain.IndexStats {
	return domain.IndexStats{Files: s.Len(), Chunks: m.chunks, Model: "mxbai-embed-large", Dimensions: 1024}
}

// mockIngestService implements driving.IngestService.
type mockIngestService struct {
	mu      sync.Mutex
	batches [][]domain.SourceFile
	err     error
}

func (m *mockIngestService) Ingest(context.Context, driving.ProcessedSet, []driving.Upload) (*driving.IngestReport, error) {
	return &driving.IngestReport{}, nil
}

func (m *mockIngestService) IngestFiles(
	_ context.Context, s driving.ProcessedSet, files []domain.SourceFile,
) (*driving.IngestReport, error) {
	m.mu.Lock()
	m.batches = append(m.batches, files)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	report := &driving.IngestReport{}
	for _, f := range files {
		switch {
		case s.IsProcessed(f.Source):
			report.AlreadyProcessed = append(report.AlreadyProcessed, f.Source)
		case strings.HasSuffix(f.Source, ".bad"):
			report.Failed = append(report.Failed, driving.FileFailure{Source: f.Source, Err: errors.New("corrupt")})
		default:
			report.Files = append(report.Files, f.Source)
			report.Chunks += 2
			s.MarkProcessed(f.Source)
		}
	}
	return report, nil
}

func (m *mockIngestService) ProcessFiles(context.Context, []domain.SourceFile) (int, []driving.FileFailure, error) {
	return 0, nil, nil
}

func (m *mockIngestService) sources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, b := range m.batches {
		for _, f := range b {
			out = append(out, f.Source)
		}
	}
	return out
}

// mockAnswerService implements driving.AnswerService.
type mockAnswerService struct {
	fragments []string
	results   []domain.SearchResult
	err       error
	question  string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	if m.err != nil {
		return nil, m.err
	}
	retrieval := domain.RetrievalResult{Question: question, Results: m.results}
	if retrieval.IsEmpty() {
		return &domain.Answer{Question: question, Stream: services.NewStaticStream(domain.NoDocumentsResponse)}, nil
	}
	return &domain.Answer{
		Question:  question,
		Retrieval: retrieval,
		Context:   retrieval.Context(),
		Stream:    services.NewStaticStream(m.fragments...),
	}, nil
}

// mockSettingsService implements driving.SettingsService over an in-memory value.
type mockSettingsService struct {
	settings    domain.AppSettings
	saveErr     error
	validateErr error
	pingErr     error
	saves       int
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider, m.settings.Embedding.Model, m.settings.Embedding.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider, m.settings.LLM.Model, m.settings.LLM.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetChunkProfile(p domain.ChunkProfile) error {
	m.settings.Chunking = domain.ChunkingSettings{Profile: p}
	return nil
}

func (m *mockSettingsService) SetTopK(k int) error {
	m.settings.Retrieval.TopK = k
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	index    *mockVectorIndex
	stats    *mockIndexService
	ingest   *mockIngestService
	answer   *mockAnswerService
	settings *mockSettingsService
	session  *services.Session
}

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		{Chunk: domain.Chunk{ID: "c1", Source: "report.pdf", Page: 3, Content: "Revenue grew by 12%\nin Q3."}, Score: 0.91},
		{Chunk: domain.Chunk{ID: "c2", Source: "notes.txt", Content: "Q3 planning notes."}, Score: 0.72},
		{Chunk: domain.Chunk{ID: "c3", Source: "report.pdf", Page: 3, Content: "Costs were flat."}, Score: 0.55},
	}
}

// setupTestServices installs mock services and returns a cleanup that
// restores every package-level variable and flag.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		index:    &mockVectorIndex{results: testResults()},
		stats:    &mockIndexService{chunks: 3},
		ingest:   &mockIngestService{},
		answer:   &mockAnswerService{fragments: []string{"Revenue ", "grew ", "12%."}, results: testResults()},
		settings: newMockSettingsService(),
		session:  services.NewSession(),
	}

	prevSettings, prevBootstrap := settingsService, bootstrap
	SetSettingsService(ts.settings)
	SetServices(&Services{
		Ingest:       ts.ingest,
		Index:        ts.stats,
		VectorIndex:  ts.index,
		Answer:       ts.answer,
		Session:      ts.session,
		ResultAction: services.NewResultActionService(),
	})

	return ts, func() {
		SetServices(nil)
		settingsService, bootstrap = prevSettings, prevBootstrap
		resetFlags()
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	}
}

func resetFlags() {
	flagIndexDir, flagEphemeral, flagTopK, flagProfile, flagVerbose = "", false, 0, "", false
	searchLimit, searchJSON, searchMinScore = domain.DefaultTopK, false, 0
	resetForce = false
	askNoSources = false
	versionShort = false
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	var in io.Reader = strings.NewReader(input)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
