// Package messages defines Bubbletea message types for the chat TUI.
// Messages carry the results of service calls back into the Elm loop.
package messages

import (
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// AnswerStarted carries the answer whose stream is ready to be read.
type AnswerStarted struct {
	Answer *domain.Answer
	Err    error
}

// FragmentReceived carries the next piece of the streaming answer.
type FragmentReceived struct {
	Fragment string
}

// AnswerFinished is sent once the answer stream is exhausted or has failed.
type AnswerFinished struct {
	Err error
}

// StatsLoaded carries fresh index statistics for the sidebar.
type StatsLoaded struct {
	Stats     domain.IndexStats
	Processed []string
}

// IngestCompleted carries the outcome of an /add command.
type IngestCompleted struct {
	Report *driving.IngestReport
	Err    error
}

// ResetCompleted is sent after the index and session were cleared.
type ResetCompleted struct {
	Err error
}

// Copied is sent after text was placed on the clipboard.
type Copied struct {
	What string
	Err  error
}

// ErrorOccurred reports an error to display.
type ErrorOccurred struct {
	Err error
}

// ViewChanged is sent when switching between the chat and help views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewHelp lists the keybindings and slash commands.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Quit is a command to exit the application.
type Quit struct{}
