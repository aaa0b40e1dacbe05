// Package tui provides the interactive chat interface for semsearch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Answer produces streamed, grounded answers.
	Answer driving.AnswerService

	// Index reports statistics and resets the index.
	Index driving.IndexService

	// Ingest indexes files added with /add. Optional.
	Ingest driving.IngestService

	// Session tracks the files processed while the TUI runs.
	Session driving.ProcessedSet

	// ResultAction copies answers and sources. Optional.
	ResultAction driving.ResultActionService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	if p.Session == nil {
		return ErrMissingSession
	}
	return nil
}
