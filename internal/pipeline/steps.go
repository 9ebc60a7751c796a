package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"unicode/utf8"

	"github.com/nao1215/urlguard/internal/classifier"
	"github.com/nao1215/urlguard/internal/features"
	"github.com/nao1215/urlguard/internal/model"
	"golang.org/x/net/publicsuffix"
)

// LengthLimitStep rejects URLs longer than a fixed number of code points.
// It keeps pathological input away from the extractor.
type LengthLimitStep struct {
	maxLength int
}

// NewLengthLimitStep creates a step that rejects URLs longer than maxLength.
// A non-positive maxLength disables the check.
func NewLengthLimitStep(maxLength int) *LengthLimitStep {
	return &LengthLimitStep{maxLength: maxLength}
}

// Name returns the step name.
func (s *LengthLimitStep) Name() string {
	return "length_limit"
}

// Do executes the length check.
func (s *LengthLimitStep) Do(_ context.Context, prediction *model.Prediction) error {
	if s.maxLength <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(prediction.URL); n > s.maxLength {
		return fmt.Errorf("%w: %d characters, limit is %d", ErrURLTooLong, n, s.maxLength)
	}
	return nil
}

// ExtractStep computes the feature vector of the URL.
type ExtractStep struct{}

// NewExtractStep creates a feature extraction step.
func NewExtractStep() *ExtractStep {
	return &ExtractStep{}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract_features"
}

// Do executes the extraction. It never fails.
func (s *ExtractStep) Do(_ context.Context, prediction *model.Prediction) error {
	prediction.Features = features.Extract(prediction.URL)
	prediction.SchemaVersion = features.SchemaVersion
	return nil
}

// checksummer is implemented by classifiers that know the digest of their artifact.
type checksummer interface {
	Checksum() string
}

// ClassifyStep feeds the feature vector to a classifier.
// ExtractStep must run before it.
type ClassifyStep struct {
	classifier classifier.Classifier

	// columns is the classifier's input order.
	columns []string

	// classes is the classifier's probability order.
	classes []string

	checksum string
}

// NewClassifyStep creates a classification step around c.
func NewClassifyStep(c classifier.Classifier) *ClassifyStep {
	s := &ClassifyStep{
		classifier: c,
		columns:    c.FeatureNames(),
		classes:    c.Classes(),
	}
	if cs, ok := c.(checksummer); ok {
		s.checksum = cs.Checksum()
	}
	return s
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do projects the vector into the classifier's column order and predicts.
func (s *ClassifyStep) Do(_ context.Context, prediction *model.Prediction) error {
	x, err := prediction.Features.Project(s.columns)
	if err != nil {
		return fmt.Errorf("%w: %w", classifier.ErrSchemaMismatch, err)
	}

	label, err := s.classifier.Predict(x)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	proba, err := s.classifier.PredictProba(x)
	if err != nil {
		return fmt.Errorf("probability estimation failed: %w", err)
	}

	prediction.Label = label
	prediction.Probabilities = make([]model.ClassProbability, len(s.classes))
	for i, class := range s.classes {
		prediction.Probabilities[i] = model.ClassProbability{Class: class, Probability: proba[i]}
	}
	prediction.ModelChecksum = s.checksum
	return nil
}

// RegisteredDomainStep records the eTLD+1 of the URL host using the
// public suffix list compiled into golang.org/x/net. It never fails;
// URLs without a usable host get an empty domain.
type RegisteredDomainStep struct{}

// NewRegisteredDomainStep creates a registered domain lookup step.
func NewRegisteredDomainStep() *RegisteredDomainStep {
	return &RegisteredDomainStep{}
}

// Name returns the step name.
func (s *RegisteredDomainStep) Name() string {
	return "registered_domain"
}

// Do executes the lookup.
func (s *RegisteredDomainStep) Do(_ context.Context, prediction *model.Prediction) error {
	prediction.RegisteredDomain = RegisteredDomain(prediction.URL)
	return nil
}

// RegisteredDomain returns the eTLD+1 of the host of rawURL, or "" if it has
// none. IP literals have no registered domain.
// A URL without scheme is read as if it started with "//", so "example.com/a"
// yields "example.com".
func RegisteredDomain(rawURL string) string {
	parts := features.Parse(rawURL)
	if parts.Netloc == "" && parts.Scheme == "" {
		parts = features.Parse("//" + rawURL)
	}

	host := parts.Host()
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}

// Recorder persists predictions.
type Recorder interface {
	SavePrediction(ctx context.Context, prediction *model.Prediction) error
}

// HistoryStep saves the prediction through a Recorder.
// It must be the last step so that the saved record is complete.
type HistoryStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewHistoryStep creates a step that saves predictions to recorder.
func NewHistoryStep(recorder Recorder, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{recorder: recorder, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "save_history"
}

// Do saves the prediction. A failed save is logged and does not fail the
// prediction, since the label is already known.
func (s *HistoryStep) Do(ctx context.Context, prediction *model.Prediction) error {
	if err := s.recorder.SavePrediction(ctx, prediction); err != nil {
		s.logger.Warn("failed to save prediction", "url", prediction.URL, "error", err)
	}
	return nil
}
