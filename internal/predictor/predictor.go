package predictor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/urlguard/internal/classifier"
	"github.com/nao1215/urlguard/internal/model"
	"github.com/nao1215/urlguard/internal/pipeline"
)

// DefaultMaxURLLength is the longest URL, in code points, accepted by a
// Predictor unless WithMaxURLLength says otherwise.
const DefaultMaxURLLength = 8192

// ErrURLTooLong is returned when a URL exceeds the length limit.
var ErrURLTooLong = pipeline.ErrURLTooLong

// Predictor classifies URLs with one loaded model.
type Predictor struct {
	classifier   classifier.Classifier
	pipeline     *pipeline.Pipeline
	logger       *slog.Logger
	maxURLLength int
	now          func() time.Time
	recorder     pipeline.Recorder
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithLogger sets the logger. slog.Default is used when not set.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Predictor) {
		p.logger = logger
	}
}

// WithMaxURLLength sets the longest accepted URL in code points.
// Zero or a negative value disables the limit.
func WithMaxURLLength(n int) Option {
	return func(p *Predictor) {
		p.maxURLLength = n
	}
}

// WithClock sets the function used to timestamp predictions.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRecorder saves every successful prediction through recorder.
func WithRecorder(recorder pipeline.Recorder) Option {
	return func(p *Predictor) {
		p.recorder = recorder
	}
}

// New loads the model artifact at modelPath and returns a Predictor for it.
// The model is loaded once; errors wrap classifier.ErrModelLoad or
// classifier.ErrSchemaMismatch.
func New(modelPath string, opts ...Option) (*Predictor, error) {
	forest, err := classifier.LoadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load model %s: %w", modelPath, err)
	}
	return NewWithClassifier(forest, opts...), nil
}

// NewWithClassifier returns a Predictor around an already loaded classifier.
func NewWithClassifier(c classifier.Classifier, opts ...Option) *Predictor {
	p := &Predictor{
		classifier:   c,
		maxURLLength: DefaultMaxURLLength,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.pipeline = pipeline.New(pipeline.WithLogger(p.logger))
	p.pipeline.AddSteps(
		pipeline.NewLengthLimitStep(p.maxURLLength),
		pipeline.NewExtractStep(),
		pipeline.NewClassifyStep(c),
		pipeline.NewRegisteredDomainStep(),
	)
	if p.recorder != nil {
		p.pipeline.AddSteps(pipeline.NewHistoryStep(p.recorder, p.logger))
	}

	return p
}

// Classifier returns the underlying model.
func (p *Predictor) Classifier() classifier.Classifier {
	return p.classifier
}

// Predict classifies rawURL.
func (p *Predictor) Predict(rawURL string) (*model.Prediction, error) {
	return p.PredictContext(context.Background(), rawURL)
}

// PredictContext classifies rawURL. The returned prediction is non-nil
// even on error, with Error set, so that batch callers can report it.
func (p *Predictor) PredictContext(ctx context.Context, rawURL string) (*model.Prediction, error) {
	prediction := &model.Prediction{
		URL:       rawURL,
		Timestamp: p.now(),
	}

	if err := p.pipeline.Execute(ctx, prediction); err != nil {
		return prediction, err
	}

	p.logger.Debug("URL classified",
		"url", rawURL,
		"label", prediction.Label,
		"confidence", prediction.Confidence(),
	)
	return prediction, nil
}

// PredictURL returns the label of rawURL under the model stored at modelPath.
// Models are loaded once per path and kept in the default cache.
func PredictURL(rawURL, modelPath string) (string, error) {
	p, err := defaultCache.Get(modelPath)
	if err != nil {
		return "", err
	}

	prediction, err := p.Predict(rawURL)
	if err != nil {
		return "", err
	}
	return prediction.Label, nil
}
