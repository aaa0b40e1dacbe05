package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/keymap"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/messages"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/styles"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/views/chat"
)

var _ tea.Model = (*App)(nil)

// App is the root Bubbletea model. It owns the chat view and overlays the
// help screen on top of it; the chat keeps receiving service results while
// help is open.
type App struct {
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	chat *chat.View
	view messages.ViewType

	width, height int
	sized         bool
}

// NewApp checks ports and builds the chat view.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingAnswerService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = s.Subtitle
	h.Styles.FullDesc = s.Muted

	return &App{
		ctx:    context.Background(),
		styles: s,
		keys:   km,
		help:   h,
		chat:   chat.NewView(s, km, ports.Answer, ports.Index, ports.Ingest, ports.Session, ports.ResultAction),
		view:   messages.ViewChat,
	}, nil
}

// WithContext scopes every service call, and the program itself, to ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chat.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("semsearch"), a.chat.Init())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg.String()); handled {
			return a, cmd
		}
	case messages.ViewChanged:
		a.view = msg.View
		return a, nil
	case messages.Quit:
		return a, a.quit()
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

// handleKey deals with keys that belong to the app rather than the chat.
// While help is open every key is consumed.
func (a *App) handleKey(k string) (tea.Cmd, bool) {
	switch {
	case keymap.Matches(k, a.keys.Quit):
		return a.quit(), true
	case a.view == messages.ViewHelp:
		if k == "esc" || keymap.Matches(k, a.keys.Help) {
			a.view = messages.ViewChat
		}
		return nil, true
	case keymap.Matches(k, a.keys.Help):
		a.view = messages.ViewHelp
		return nil, true
	}
	return nil, false
}

func (a *App) quit() tea.Cmd {
	a.chat.Stop()
	return tea.Quit
}

func (a *App) View() string {
	switch {
	case !a.sized:
		return "Initialising..."
	case a.view == messages.ViewHelp:
		return a.helpView()
	}
	return a.chat.View()
}

func (a *App) helpView() string {
	var cmds strings.Builder
	for _, c := range chat.Commands {
		fmt.Fprintf(&cmds, "  %s %s\n",
			a.styles.Subtitle.Render(fmt.Sprintf("%-12s", c.Usage)), a.styles.Muted.Render(c.Desc))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Help"),
		"",
		a.styles.Subtitle.Render("Keys"),
		a.help.FullHelpView(a.keys.FullHelp()),
		"",
		a.styles.Subtitle.Render("Commands"),
		cmds.String(),
		a.styles.Help.Render("[esc] back to chat"),
	)
}

// Run blocks until the user quits or the context is cancelled.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

func (a *App) CurrentView() messages.ViewType { return a.view }

func (a *App) Chat() *chat.View { return a.chat }

// Ready reports whether the first window size has arrived.
func (a *App) Ready() bool { return a.sized }

func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.sized = true
	a.help.Width = width
	a.chat.SetDimensions(width, height)
}
