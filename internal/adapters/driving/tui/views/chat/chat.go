// Package chat provides the conversation view: a scrolling transcript of
// streamed answers, the question input and an index sidebar.
package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/components/input"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/components/list"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/components/status"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/keymap"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/messages"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/styles"
	"github.com/FamilOrujov/semsearch/internal/connectors/filesystem"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// ErrIngestDisabled is reported by /add when no ingest service is wired.
var ErrIngestDisabled = errors.New("chat: ingest is not available")

// ErrClipboardUnavailable is reported by copy when no action service is wired.
var ErrClipboardUnavailable = errors.New("chat: clipboard is not available")

const (
	sidebarWidth    = 34
	minWidthSidebar = 72
	maxListedFiles  = 6
)

// turn is one entry in the transcript: a question and its answer, or a notice.
type turn struct {
	question string
	answer   string
	sources  []string
	stopped  bool
	err      error

	// notice is set for command output instead of a question.
	notice string
	failed bool
}

// View is the conversation view.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	sources    *list.SourceList
	statusbar  *status.Bar
	transcript viewport.Model
	spinner    spinner.Model

	answers driving.AnswerService
	index   driving.IndexService
	ingest  driving.IngestService
	session driving.ProcessedSet
	actions driving.ResultActionService

	ctx    context.Context
	cancel context.CancelFunc
	stream domain.TextStream

	turns     []turn
	stats     domain.IndexStats
	processed []string
	busy      bool
	err       error

	width  int
	height int
}

// NewView creates a new chat view. ingest and actions may be nil; the
// commands that need them then report an error instead.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answers driving.AnswerService,
	index driving.IndexService,
	ingest driving.IngestService,
	session driving.ProcessedSet,
	actions driving.ResultActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		sources:    list.NewSourceList(s),
		statusbar:  status.NewBar(s, km),
		transcript: viewport.New(60, 10),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		answers:    answers,
		index:      index,
		ingest:     ingest,
		session:    session,
		actions:    actions,
		ctx:        context.Background(),
	}
	v.SetDimensions(100, 30)
	return v
}

// WithContext sets the parent context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the input and loads the sidebar statistics.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadStats())
}

// Update handles key presses and service results.
//
//nolint:gocyclo // central message handler
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.statusbar.SetSpinner(v.spinner.View())
		v.refresh()
		return v, cmd

	case messages.AnswerStarted:
		if msg.Err != nil {
			v.finishAnswer(msg.Err)
			return v, nil
		}
		t := v.lastTurn()
		t.sources = msg.Answer.Retrieval.Sources()
		v.stream = msg.Answer.Stream
		v.sources.SetResults(msg.Answer.Retrieval.Results)
		v.statusbar.SetState(status.StateStreaming)
		v.refresh()
		return v, nextFragment(v.stream)

	case messages.FragmentReceived:
		if v.stream == nil {
			return v, nil
		}
		v.lastTurn().answer += msg.Fragment
		v.refresh()
		return v, nextFragment(v.stream)

	case messages.AnswerFinished:
		v.finishAnswer(msg.Err)
		return v, nil

	case messages.IngestCompleted:
		v.busy = false
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, v.loadStats()
		}
		v.notice(describeReport(msg.Report), msg.Report != nil && len(msg.Report.Failed) > 0)
		v.statusbar.Clear()
		return v, v.loadStats()

	case messages.ResetCompleted:
		v.busy = false
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, v.loadStats()
		}
		v.sources.SetResults(nil)
		v.notice("Index and processed files cleared.", false)
		v.statusbar.Clear()
		return v, v.loadStats()

	case messages.StatsLoaded:
		v.stats = msg.Stats
		v.processed = msg.Processed
		return v, nil

	case messages.Copied:
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.statusbar.SetMessage("Copied " + msg.What)
		return v, nil

	case messages.ErrorOccurred:
		v.fail(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKey routes a key press.
func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Stop):
		v.Stop()
		return v, nil

	case keymap.Matches(k, v.keymap.PageUp), keymap.Matches(k, v.keymap.PageDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(k, v.keymap.Focus):
		v.toggleFocus()
		return v, nil

	case keymap.Matches(k, v.keymap.Copy):
		return v, v.copy()

	case keymap.Matches(k, v.keymap.Reset):
		return v, v.reset()
	}

	if v.sources.Focused() {
		var cmd tea.Cmd
		v.sources, cmd = v.sources.Update(msg)
		return v, cmd
	}

	if keymap.Matches(k, v.keymap.Send) {
		if v.busy {
			return v, nil
		}
		return v, v.submit(v.input.Submit())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// Command is a slash command as listed in the help view.
type Command struct {
	Usage string
	Desc  string
}

// Commands lists the slash commands in help order.
var Commands = []Command{
	{"/add <path>", "index files or directories (pdf, txt, docx)"},
	{"/reset", "clear the index and processed files"},
	{"/copy", "copy the last answer"},
	{"/help", "show this help"},
	{"/quit", "exit"},
}

// submit runs a slash command or asks a question.
func (v *View) submit(line string) tea.Cmd {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return v.ask(line)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/add":
		return v.add(fields[1:])
	case "/reset":
		return v.reset()
	case "/copy":
		return v.copy()
	case "/help":
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case "/quit", "/exit":
		return func() tea.Msg { return messages.Quit{} }
	default:
		v.notice(fmt.Sprintf("Unknown command %s. Try /add, /reset, /copy, /help or /quit.", fields[0]), true)
		return nil
	}
}

// ask starts answering a question.
func (v *View) ask(question string) tea.Cmd {
	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel
	v.turns = append(v.turns, turn{question: question})
	v.startBusy(status.StateThinking)
	v.refresh()

	answers := v.answers
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		answer, err := answers.Answer(ctx, question)
		return messages.AnswerStarted{Answer: answer, Err: err}
	})
}

// nextFragment pulls one fragment. The stream is closed once it ends.
func nextFragment(stream domain.TextStream) tea.Cmd {
	return func() tea.Msg {
		if stream.Next() {
			return messages.FragmentReceived{Fragment: stream.Fragment()}
		}
		err := stream.Err()
		_ = stream.Close()
		return messages.AnswerFinished{Err: err}
	}
}

// finishAnswer records how the current answer ended.
func (v *View) finishAnswer(err error) {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.busy = false
	v.stream = nil
	v.statusbar.SetSpinner("")

	t := v.lastTurn()
	switch {
	case err == nil:
		v.statusbar.Clear()
	case errors.Is(err, context.Canceled):
		t.stopped = true
		v.statusbar.Clear()
	default:
		t.err = err
		v.err = err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
	}
	v.refresh()
}

// add ingests files and directories named on the /add line.
func (v *View) add(paths []string) tea.Cmd {
	if v.ingest == nil {
		v.fail(ErrIngestDisabled)
		return nil
	}
	if len(paths) == 0 {
		v.notice("Usage: /add <file or directory>...", true)
		return nil
	}
	for i, p := range paths {
		paths[i] = expandHome(p)
	}

	v.startBusy(status.StateIngesting)
	ctx, ingest, session := v.ctx, v.ingest, v.session
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		files, err := filesystem.Collect(ctx, paths...)
		if err != nil {
			return messages.IngestCompleted{Err: err}
		}
		report, err := ingest.IngestFiles(ctx, session, files)
		return messages.IngestCompleted{Report: report, Err: err}
	})
}

// reset clears the index and the session's processed files.
func (v *View) reset() tea.Cmd {
	if v.busy {
		return nil
	}
	v.startBusy(status.StateResetting)
	ctx, index, session := v.ctx, v.index, v.session
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		return messages.ResetCompleted{Err: index.Reset(ctx, session)}
	})
}

// copy places the selected source, or else the last answer, on the clipboard.
func (v *View) copy() tea.Cmd {
	if v.actions == nil {
		v.fail(ErrClipboardUnavailable)
		return nil
	}
	ctx, actions := v.ctx, v.actions

	if v.sources.Focused() {
		if r := v.sources.SelectedResult(); r != nil {
			result := *r
			return func() tea.Msg {
				return messages.Copied{What: result.Chunk.Location(), Err: actions.CopyResult(ctx, &result)}
			}
		}
	}

	text := v.LastAnswer()
	if text == "" {
		v.statusbar.SetMessage("Nothing to copy yet")
		return nil
	}
	return func() tea.Msg {
		return messages.Copied{What: "answer", Err: actions.CopyText(ctx, text)}
	}
}

func (v *View) loadStats() tea.Cmd {
	ctx, index, session := v.ctx, v.index, v.session
	return func() tea.Msg {
		return messages.StatsLoaded{
			Stats:     index.Stats(ctx, session),
			Processed: session.Processed(),
		}
	}
}

// Stop cancels the answer being streamed, if any.
func (v *View) Stop() {
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *View) toggleFocus() {
	if v.sources.Focused() {
		v.sources.SetFocused(false)
		v.input.Focus()
		if !v.busy {
			v.statusbar.SetState(status.StateReady)
		}
		return
	}
	if v.sources.IsEmpty() {
		return
	}
	v.sources.SetFocused(true)
	v.input.Blur()
	if !v.busy {
		v.statusbar.SetState(status.StateSources)
	}
}

func (v *View) startBusy(state status.State) {
	v.busy = true
	v.err = nil
	v.statusbar.SetState(state)
	v.statusbar.SetMessage("")
}

func (v *View) fail(err error) {
	v.busy = false
	v.err = err
	v.statusbar.SetSpinner("")
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.notice(err.Error(), true)
}

func (v *View) notice(text string, failed bool) {
	v.turns = append(v.turns, turn{notice: text, failed: failed})
	v.refresh()
}

// lastTurn returns the newest turn, adding an empty one if needed.
func (v *View) lastTurn() *turn {
	if len(v.turns) == 0 {
		v.turns = append(v.turns, turn{})
	}
	return &v.turns[len(v.turns)-1]
}

// refresh re-renders the transcript and follows the newest line.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

// SetDimensions lays out the view for a terminal of the given size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	main := width
	if width >= minWidthSidebar {
		main = width - sidebarWidth
		// Sidebar border and padding take four columns; the header block
		// above the list takes about nine rows.
		v.sources.SetDimensions(sidebarWidth-4, max(2, height-maxListedFiles-14))
	}

	v.input.SetWidth(main)
	v.statusbar.SetWidth(width)
	// Header, input box, status bar and transcript border.
	v.transcript.Width = max(10, main-4)
	v.transcript.Height = max(3, height-1-3-1-2)
	v.refresh()
}

// View renders the chat view.
func (v *View) View() string {
	header := v.styles.Title.Render("semsearch") + v.styles.Muted.Render("  ask questions about your documents")
	body := v.styles.Transcript.Render(v.transcript.View())
	main := lipgloss.JoinVertical(lipgloss.Left, header, body, v.input.View())

	if v.width >= minWidthSidebar {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, v.renderSidebar())
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, v.statusbar.View())
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Add documents with /add <path>, then ask a question.")
	}

	width := max(10, v.transcript.Width)
	var b strings.Builder
	for i := range v.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.renderTurn(&v.turns[i], i == len(v.turns)-1, width))
	}
	return b.String()
}

func (v *View) renderTurn(t *turn, last bool, width int) string {
	if t.notice != "" {
		style := v.styles.Success
		if t.failed {
			style = v.styles.Error
		}
		return style.Width(width).Render("· " + t.notice)
	}

	lines := []string{v.styles.Question.Width(width).Render("You: " + t.question)}

	switch {
	case t.answer != "":
		lines = append(lines, v.styles.Answer.Width(width).Render(t.answer))
	case last && v.busy:
		lines = append(lines, v.styles.Muted.Render(v.spinner.View()+" thinking"))
	}

	if t.stopped {
		lines = append(lines, v.styles.Warning.Render("(stopped)"))
	}
	if t.err != nil {
		lines = append(lines, v.styles.Error.Width(width).Render("Error: "+t.err.Error()))
	}
	if len(t.sources) > 0 && (!last || !v.busy) {
		lines = append(lines, v.styles.Source.Width(width).Render("Sources: "+strings.Join(t.sources, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderSidebar() string {
	s := v.styles
	model := v.stats.Model
	if model == "" {
		model = "-"
	}

	lines := []string{
		s.Subtitle.Render("Index"),
		fmt.Sprintf("Files:  %d", v.stats.Files),
		fmt.Sprintf("Chunks: %d", v.stats.Chunks),
		s.Muted.Render("Model:  " + model),
	}
	if v.stats.Dimensions > 0 {
		lines = append(lines, s.Muted.Render(fmt.Sprintf("Dims:   %d", v.stats.Dimensions)))
	}

	if len(v.processed) > 0 {
		lines = append(lines, "", s.Subtitle.Render("Processed"))
		shown := v.processed
		if len(shown) > maxListedFiles {
			shown = shown[:maxListedFiles]
		}
		for _, name := range shown {
			lines = append(lines, s.Muted.Render(truncateLeft(name, sidebarWidth-6)))
		}
		if extra := len(v.processed) - len(shown); extra > 0 {
			lines = append(lines, s.Muted.Render(fmt.Sprintf("+%d more", extra)))
		}
	}

	lines = append(lines, "", s.Subtitle.Render("Sources"), v.sources.View())

	return s.Sidebar.
		Width(sidebarWidth - 2).
		Height(max(3, v.height-3)).
		Render(strings.Join(lines, "\n"))
}

// truncateLeft keeps the end of a path, which carries the file name.
func truncateLeft(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n || n < 4 {
		return s
	}
	return "..." + string(runes[len(runes)-n+3:])
}

// describeReport summarises an ingest report in one line.
func describeReport(r *driving.IngestReport) string {
	if r == nil {
		return "Nothing to index."
	}
	parts := []string{fmt.Sprintf("Indexed %d file(s) into %d chunk(s).", len(r.Files), r.Chunks)}
	if n := len(r.AlreadyProcessed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d already processed.", n))
	}
	if n := len(r.Unsupported); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unsupported.", n))
	}
	for _, f := range r.Failed {
		parts = append(parts, fmt.Sprintf("Failed %s: %v.", f.Source, f.Err))
	}
	return strings.Join(parts, " ")
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// LastAnswer returns the most recent non-empty answer text.
func (v *View) LastAnswer() string {
	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].answer != "" {
			return v.turns[i].answer
		}
	}
	return ""
}

// Busy reports whether a question, ingest or reset is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Stats returns the last loaded index statistics.
func (v *View) Stats() domain.IndexStats {
	return v.stats
}

// Sources returns the retrieved-source list.
func (v *View) Sources() *list.SourceList {
	return v.sources
}

// Input returns the question input.
func (v *View) Input() *input.ChatInput {
	return v.input
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// Err returns the last error shown.
func (v *View) Err() error {
	return v.err
}
