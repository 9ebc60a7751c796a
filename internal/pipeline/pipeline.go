package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/urlguard/internal/model"
)

// Step fills in one part of a Prediction.
type Step interface {
	// Do updates prediction. A returned error ends the prediction.
	Do(ctx context.Context, prediction *model.Prediction) error
	// Name identifies the step in logs.
	Name() string
}

// Pipeline runs its steps in order on one prediction at a time.
// Execute does not modify the Pipeline, so a built Pipeline may be shared by
// concurrent callers.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps after the existing ones.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs the steps on prediction and stops at the first failure,
// whose message is stored in prediction.Error. The context is checked
// before every step.
func (p *Pipeline) Execute(ctx context.Context, prediction *model.Prediction) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("prediction cancelled", "step", step.Name(), "url", prediction.URL, "reason", err)
			prediction.Error = err.Error()
			return err
		}

		start := time.Now()
		err := step.Do(ctx, prediction)
		p.logger.Debug("step done",
			"step", step.Name(),
			"url", prediction.URL,
			"elapsed", time.Since(start),
		)
		if err != nil {
			p.logger.Debug("step failed", "step", step.Name(), "url", prediction.URL, "error", err)
			prediction.Error = err.Error()
			return err
		}
	}
	return nil
}
