package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/urlguard/internal/evaluate"
	"github.com/nao1215/urlguard/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is written into batch reports when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the urlguard version in batch reports.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// BatchReport is the JSON document written for many URLs.
type BatchReport struct {
	// Version is the urlguard version that generated this report.
	Version string `json:"version,omitempty"`

	// Summary is the condensed view for quick access.
	Summary *model.BatchSummary `json:"summary"`

	// Predictions holds one entry per input URL, in input order.
	Predictions []*model.Prediction `json:"predictions"`
}

// Write outputs a single prediction in JSON format.
func (w *JSONWriter) Write(prediction *model.Prediction) (int, error) {
	return w.writeJSON(prediction)
}

// WriteBatch outputs the predictions wrapped with a summary.
func (w *JSONWriter) WriteBatch(predictions []*model.Prediction) (int, error) {
	if predictions == nil {
		predictions = []*model.Prediction{}
	}
	return w.writeJSON(&BatchReport{
		Version:     w.version,
		Summary:     w.summarize(predictions),
		Predictions: predictions,
	})
}

// WriteEvaluation outputs the evaluation metrics in JSON format.
func (w *JSONWriter) WriteEvaluation(result *evaluate.Result) (int, error) {
	return w.writeJSON(result)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
