package report

import (
	"io"
	"time"

	"github.com/nao1215/urlguard/internal/evaluate"
	"github.com/nao1215/urlguard/internal/model"
)

// Writer defines the interface for report output.
// Implementations write prediction and evaluation results in various formats.
type Writer interface {
	// Write outputs a single prediction.
	// Returns the number of bytes written and any error encountered.
	Write(prediction *model.Prediction) (int, error)

	// WriteBatch outputs the results of many URLs, preceded by a summary.
	WriteBatch(predictions []*model.Prediction) (int, error)

	// WriteEvaluation outputs the metrics of a labeled evaluation run.
	WriteEvaluation(result *evaluate.Result) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the prediction to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(prediction *model.Prediction) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(prediction) })
}

// WriteBatch outputs the predictions to all configured Writers.
func (m *MultiWriter) WriteBatch(predictions []*model.Prediction) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteBatch(predictions) })
}

// WriteEvaluation outputs the evaluation result to all configured Writers.
func (m *MultiWriter) WriteEvaluation(result *evaluate.Result) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteEvaluation(result) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	now    func() time.Time
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, now: time.Now}
}

// summarize builds the batch summary stamped with the writer clock.
func (b baseWriter) summarize(predictions []*model.Prediction) *model.BatchSummary {
	return model.NewBatchSummary(predictions, b.now())
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
