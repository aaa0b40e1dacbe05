package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/styles"
)

func typeText(c *ChatInput, text string) {
	for _, r := range text {
		c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewChatInput(t *testing.T) {
	c := NewChatInput(styles.DefaultStyles())

	require.NotNil(t, c)
	assert.Equal(t, "", c.Value())
	assert.True(t, c.Focused())
	assert.NotNil(t, c.Init())

	c = NewChatInput(nil)
	assert.NotNil(t, c.styles)
}

func TestChatInput_Typing(t *testing.T) {
	c := NewChatInput(nil)

	typeText(c, "what is RAG?")
	assert.Equal(t, "what is RAG?", c.Value())

	c.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "what is RAG", c.Value())
}

func TestChatInput_Submit(t *testing.T) {
	c := NewChatInput(nil)

	typeText(c, "  first question  ")
	assert.Equal(t, "first question", c.Submit())
	assert.Equal(t, "", c.Value())

	assert.Equal(t, "", c.Submit(), "blank line")
	assert.Equal(t, []string{"first question"}, c.History())

	c.SetValue("first question")
	c.Submit()
	assert.Len(t, c.History(), 1, "consecutive duplicates collapse")
}

func TestChatInput_HistoryRecall(t *testing.T) {
	c := NewChatInput(nil)
	c.SetValue("one")
	c.Submit()
	c.SetValue("two")
	c.Submit()

	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "two", c.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "one", c.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "one", c.Value(), "stays at the oldest entry")

	c.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "two", c.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "", c.Value(), "past the newest entry clears")
}

func TestChatInput_HistoryRecall_Empty(t *testing.T) {
	c := NewChatInput(nil)
	c.SetValue("draft")

	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "draft", c.Value())
}

func TestChatInput_FocusAndBlur(t *testing.T) {
	c := NewChatInput(nil)

	c.Blur()
	assert.False(t, c.Focused())
	c.Focus()
	assert.True(t, c.Focused())
}

func TestChatInput_SetWidth(t *testing.T) {
	c := NewChatInput(nil)

	c.SetWidth(100)
	assert.Equal(t, 100, c.Width())
	assert.Equal(t, 92, c.textinput.Width)

	c.SetWidth(10)
	assert.Equal(t, 20, c.textinput.Width)
}

func TestChatInput_View(t *testing.T) {
	c := NewChatInput(nil)
	c.SetValue("hello")

	assert.Contains(t, c.View(), "hello")
}
