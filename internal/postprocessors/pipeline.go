// Package postprocessors chains the text repair and chunking steps that run
// between extraction and embedding.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

var errNilDocument = errors.New("document is nil")

// Pipeline runs processors in order. Each sees the document as left by the
// previous one and the chunks it returned.
type Pipeline struct {
	steps []driven.PostProcessor
}

// NewPipeline creates a pipeline running steps in order.
func NewPipeline(steps ...driven.PostProcessor) *Pipeline {
	return &Pipeline{steps: steps}
}

// BuildPipeline resolves cfg.Processors through r, in the listed order.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	steps := make([]driven.PostProcessor, 0, len(cfg.Processors))
	for _, name := range cfg.Processors {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		steps = append(steps, proc)
	}
	return NewPipeline(steps...), nil
}

// Process runs every step on doc and returns the final chunks.
// It stops at the first failing step or when ctx is cancelled.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, errNilDocument
	}

	var chunks []domain.Chunk
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := step.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", step.Name(), err)
		}
		chunks = out
	}
	logger.Debug("%s: %d chunk(s) after %d processor(s)", doc.Location(), len(chunks), len(p.steps))
	return chunks, nil
}

// Names lists the processors in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
