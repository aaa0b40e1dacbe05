package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/messages"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/core/services"
)

type mockAnswerService struct {
	answerFn  func(ctx context.Context, question string) (*domain.Answer, error)
	questions []string
	lastCtx   context.Context
}

func (m *mockAnswerService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	m.lastCtx = ctx
	if m.answerFn != nil {
		return m.answerFn(ctx, question)
	}
	return newAnswer(question, nil, "ok"), nil
}

type mockIndexService struct {
	stats    domain.IndexStats
	resetErr error
	resets   int
}

func (m *mockIndexService) Reset(_ context.Context, session driving.ProcessedSet) error {
	m.resets++
	if m.resetErr != nil {
		return m.resetErr
	}
	m.stats.Chunks = 0
	session.Reset()
	return nil
}

func (m *mockIndexService) Count(_ context.Context) int {
	return m.stats.Chunks
}

func (m *mockIndexService) Stats(_ context.Context, session driving.ProcessedSet) domain.IndexStats {
	s := m.stats
	s.Files = session.Len()
	return s
}

type mockIngestService struct {
	files  []domain.SourceFile
	chunks int
	err    error
}

func (m *mockIngestService) Ingest(context.Context, driving.ProcessedSet, []driving.Upload) (*driving.IngestReport, error) {
	return &driving.IngestReport{}, nil
}

func (m *mockIngestService) IngestFiles(
	_ context.Context, session driving.ProcessedSet, files []domain.SourceFile,
) (*driving.IngestReport, error) {
	m.files = append(m.files, files...)
	if m.err != nil {
		return nil, m.err
	}
	report := &driving.IngestReport{Chunks: m.chunks}
	for _, f := range files {
		report.Files = append(report.Files, f.Source)
		session.MarkProcessed(f.Source)
	}
	return report, nil
}

func (m *mockIngestService) ProcessFiles(context.Context, []domain.SourceFile) (int, []driving.FileFailure, error) {
	return 0, nil, nil
}

type mockActions struct {
	texts   []string
	results []domain.SearchResult
	err     error
}

func (m *mockActions) CopyText(_ context.Context, text string) error {
	m.texts = append(m.texts, text)
	return m.err
}

func (m *mockActions) CopyResult(_ context.Context, result *domain.SearchResult) error {
	m.results = append(m.results, *result)
	return m.err
}

// newAnswer builds an answer over a static stream.
func newAnswer(question string, results []domain.SearchResult, fragments ...string) *domain.Answer {
	return &domain.Answer{
		Question:  question,
		Retrieval: domain.RetrievalResult{Question: question, Results: results},
		Stream:    services.NewStaticStream(fragments...),
	}
}

type fixture struct {
	view    *View
	answers *mockAnswerService
	index   *mockIndexService
	ingest  *mockIngestService
	actions *mockActions
	session *services.Session
}

func newFixture() *fixture {
	f := &fixture{
		answers: &mockAnswerService{},
		index:   &mockIndexService{stats: domain.IndexStats{Chunks: 5, Model: "mxbai-embed-large", Dimensions: 1024}},
		ingest:  &mockIngestService{chunks: 3},
		actions: &mockActions{},
		session: services.NewSession(),
	}
	f.view = NewView(nil, nil, f.answers, f.index, f.ingest, f.session, f.actions)
	return f
}

// drive runs cmd and feeds every service result back into the view until
// no work remains. Other messages (spinner ticks, cursor blinks, view
// changes) are collected but not fed back.
func (f *fixture) drive(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		out = append(out, msg)

		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
		case messages.AnswerStarted, messages.FragmentReceived, messages.AnswerFinished,
			messages.IngestCompleted, messages.ResetCompleted, messages.StatsLoaded, messages.Copied:
			var next tea.Cmd
			f.view, next = f.view.Update(msg)
			queue = append(queue, next)
		}
	}
	return out
}

// send delivers a key press and drives the resulting work.
func (f *fixture) send(msg tea.KeyMsg) []tea.Msg {
	var cmd tea.Cmd
	f.view, cmd = f.view.Update(msg)
	return f.drive(cmd)
}

// submit types line into the input and presses enter.
func (f *fixture) submit(line string) []tea.Msg {
	f.view.Input().SetValue(line)
	return f.send(tea.KeyMsg{Type: tea.KeyEnter})
}
