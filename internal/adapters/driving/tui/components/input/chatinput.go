// Package input provides the question input for the chat TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/styles"
)

// ChatInput wraps a bubbles textinput and remembers submitted lines.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	history []string
	// cursor indexes history while recalling; len(history) means "not recalling".
	cursor int
}

// NewChatInput creates a new question input.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your documents, or /add <path>"
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 50

	return &ChatInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages. Up and down recall earlier lines.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // only history keys are intercepted
		switch km.Type {
		case tea.KeyUp:
			c.recall(-1)
			return c, nil
		case tea.KeyDown:
			c.recall(1)
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

func (c *ChatInput) recall(step int) {
	if len(c.history) == 0 {
		return
	}
	next := c.cursor + step
	if next < 0 || next > len(c.history) {
		return
	}
	c.cursor = next
	if c.cursor == len(c.history) {
		c.textinput.SetValue("")
		return
	}
	c.textinput.SetValue(c.history[c.cursor])
	c.textinput.CursorEnd()
}

// View renders the input.
func (c *ChatInput) View() string {
	label := c.styles.Title.Render("> ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Submit returns the trimmed line, records it in history and clears the input.
// Blank lines return "" and are not recorded.
func (c *ChatInput) Submit() string {
	line := strings.TrimSpace(c.textinput.Value())
	c.textinput.Reset()
	if line == "" {
		c.cursor = len(c.history)
		return ""
	}
	if n := len(c.history); n == 0 || c.history[n-1] != line {
		c.history = append(c.history, line)
	}
	c.cursor = len(c.history)
	return line
}

// History returns the submitted lines, oldest first.
func (c *ChatInput) History() []string {
	return c.history
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the total width, including the prompt and border.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	inputWidth := width - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}
