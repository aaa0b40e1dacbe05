// Package list provides the retrieved-source list for the chat TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui/styles"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// SourceList shows the chunks that grounded the last answer.
type SourceList struct {
	results  []domain.SearchResult
	selected int
	focused  bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  30,
		height: 10,
	}
}

// Init initialises the list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles navigation while the list has focus.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !l.focused {
		return l, nil
	}
	switch km.String() {
	case "up", "k":
		l.MoveUp()
	case "down", "j":
		l.MoveDown()
	}
	return l, nil
}

// View renders the list.
func (l *SourceList) View() string {
	if len(l.results) == 0 {
		return l.styles.Muted.Render("No sources yet")
	}

	// Each entry takes two lines.
	visible := l.height / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.results) {
		end = len(l.results)
	}

	lines := make([]string, 0, (end-start)*2)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderResult(i, &l.results[i]))
	}
	return strings.Join(lines, "\n")
}

// renderResult formats one retrieved chunk as a location line and a preview.
func (l *SourceList) renderResult(index int, r *domain.SearchResult) string {
	loc := r.Chunk.Location()
	if loc == "" {
		loc = "(unknown)"
	}
	head := truncate(fmt.Sprintf("%d. %s", index+1, loc), l.width-7)
	score := fmt.Sprintf("%.2f", r.Score)

	var title string
	if l.focused && index == l.selected {
		title = l.styles.Selected.Render(head+" "+score)
	} else {
		title = l.styles.Source.Render(head) + " " + l.styles.Muted.Render(score)
	}

	preview := strings.Join(strings.Fields(r.Chunk.Content), " ")
	preview = l.styles.Muted.Render("   " + truncate(preview, l.width-3))
	return title + "\n" + preview
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the list contents and selects the first entry.
func (l *SourceList) SetResults(results []domain.SearchResult) {
	l.results = results
	l.selected = 0
}

// Results returns the current results.
func (l *SourceList) Results() []domain.SearchResult {
	return l.results
}

// Selected returns the index of the selected result.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedResult returns the selected result, or nil if the list is empty.
func (l *SourceList) SelectedResult() *domain.SearchResult {
	if l.selected < 0 || l.selected >= len(l.results) {
		return nil
	}
	return &l.results[l.selected]
}

// MoveUp moves the selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.results)-1 {
		l.selected++
	}
}

// SetFocused marks whether navigation keys go to the list.
func (l *SourceList) SetFocused(focused bool) {
	l.focused = focused
}

// Focused reports whether the list has focus.
func (l *SourceList) Focused() bool {
	return l.focused
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of results.
func (l *SourceList) Count() int {
	return len(l.results)
}

// IsEmpty returns whether the list is empty.
func (l *SourceList) IsEmpty() bool {
	return len(l.results) == 0
}
