package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/urlguard/internal/model"
)

// recordingStep appends its name to a shared trace and returns err.
type recordingStep struct {
	name  string
	trace *[]string
	err   error
}

func (s *recordingStep) Do(_ context.Context, _ *model.Prediction) error {
	*s.trace = append(*s.trace, s.name)
	return s.err
}

func (s *recordingStep) Name() string {
	return s.name
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	var trace []string
	p := New()
	if got := p.StepNames(); len(got) != 0 {
		t.Errorf("new pipeline has steps %v", got)
	}

	p.AddSteps(&recordingStep{name: "length", trace: &trace}, &recordingStep{name: "extract", trace: &trace})
	p.AddSteps(&recordingStep{name: "classify", trace: &trace})

	want := []string{"length", "extract", "classify"}
	if got := p.StepNames(); !slices.Equal(got, want) {
		t.Errorf("StepNames() = %v, want %v", got, want)
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	errTooLong := errors.New("URL too long")

	tests := []struct {
		name      string
		failAt    int
		wantTrace []string
		wantError string
	}{
		{name: "every step runs in order", failAt: -1, wantTrace: []string{"a", "b", "c"}},
		{name: "a failure stops the remaining steps", failAt: 1, wantTrace: []string{"a", "b"}, wantError: "URL too long"},
		{name: "a failure in the first step", failAt: 0, wantTrace: []string{"a"}, wantError: "URL too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var trace []string
			p := New()
			for i, name := range []string{"a", "b", "c"} {
				step := &recordingStep{name: name, trace: &trace}
				if i == tt.failAt {
					step.err = errTooLong
				}
				p.AddSteps(step)
			}

			prediction := &model.Prediction{URL: "http://example.com"}
			err := p.Execute(context.Background(), prediction)

			if !slices.Equal(trace, tt.wantTrace) {
				t.Errorf("trace = %v, want %v", trace, tt.wantTrace)
			}
			if prediction.Error != tt.wantError {
				t.Errorf("prediction.Error = %q, want %q", prediction.Error, tt.wantError)
			}
			if tt.wantError == "" && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantError != "" && !errors.Is(err, errTooLong) {
				t.Errorf("Execute() error = %v, want %v", err, errTooLong)
			}
		})
	}
}

func TestPipelineExecuteCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var trace []string
	var logs bytes.Buffer
	p := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	p.AddSteps(&recordingStep{name: "never", trace: &trace})

	prediction := &model.Prediction{URL: "http://example.com"}
	err := p.Execute(ctx, prediction)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if len(trace) != 0 {
		t.Errorf("steps ran after cancellation: %v", trace)
	}
	if prediction.Error != context.Canceled.Error() {
		t.Errorf("prediction.Error = %q", prediction.Error)
	}
	if !strings.Contains(logs.String(), "prediction cancelled") {
		t.Errorf("expected a cancellation warning, got %q", logs.String())
	}
}
