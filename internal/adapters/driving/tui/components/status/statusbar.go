// Package status renders the one-line footer of the chat TUI.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/keymap"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/styles"
)

// State is what the chat view is doing right now.
type State int

const (
	StateReady State = iota
	StateThinking
	StateStreaming
	StateIngesting
	StateResetting
	StateSources
	StateError
)

// busyLabels are shown, behind the spinner, while work is in flight.
var busyLabels = map[State]string{
	StateThinking:  "Retrieving...",
	StateStreaming: "Answering...",
	StateIngesting: "Indexing...",
	StateResetting: "Resetting...",
}

// Bar shows the current state on the left and key hints on the right.
// It holds no tea.Model logic; the chat view drives it through setters.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	state   State
	message string
	spinner string
	width   int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = s.Muted
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{styles: s, keys: km, help: h, width: 80}
}

func (b *Bar) View() string {
	left := b.status()

	// Hints get whatever the status text leaves over.
	var right string
	if room := b.width - lipgloss.Width(left) - 3; room > 0 {
		b.help.Width = room
		right = b.help.ShortHelpView(b.hints())
	}

	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	if label, busy := busyLabels[b.state]; busy {
		if b.spinner != "" {
			label = b.spinner + " " + label
		}
		return b.styles.Muted.Render(label)
	}
	switch {
	case b.state == StateError && b.message != "":
		return b.styles.Error.Render("Error: " + b.message)
	case b.state == StateError:
		return b.styles.Error.Render("Error")
	case b.message != "":
		return b.styles.Success.Render(b.message)
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) hints() []key.Binding {
	switch b.state {
	case StateThinking, StateStreaming:
		return b.keys.StreamingHelp()
	case StateSources:
		return b.keys.SourcesHelp()
	}
	return b.keys.ShortHelp()
}

func (b *Bar) SetState(state State) { b.state = state }

func (b *Bar) State() State { return b.state }

// SetMessage sets a notice for the ready state, or the error text in StateError.
func (b *Bar) SetMessage(message string) { b.message = message }

func (b *Bar) Message() string { return b.message }

// SetSpinner sets the frame drawn beside busy states. Empty hides it.
func (b *Bar) SetSpinner(frame string) { b.spinner = frame }

func (b *Bar) SetWidth(width int) { b.width = width }

// Clear returns to StateReady with no message.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
