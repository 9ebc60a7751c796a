package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/urlguard/internal/evaluate"
	"github.com/nao1215/urlguard/internal/features"
	"github.com/nao1215/urlguard/internal/model"
	"github.com/olekukonko/tablewriter"
)

// SimpleWriter outputs human-readable text reports.
// Single predictions are one line; batch and evaluation reports use
// ASCII tables so they stay readable when piped to a file.
type SimpleWriter struct {
	baseWriter

	// verbose adds class probabilities and the feature vector.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one prediction as "> Prediction for <url>: <label>".
func (w *SimpleWriter) Write(prediction *model.Prediction) (int, error) {
	var sb strings.Builder

	if prediction.Failed() {
		fmt.Fprintf(&sb, "> Prediction for %s failed: %s\n", prediction.URL, prediction.Error)
		return io.WriteString(w.output, sb.String())
	}
	fmt.Fprintf(&sb, "> Prediction for %s: %s\n", prediction.URL, prediction.Label)

	if w.verbose {
		if err := w.writeDetails(&sb, prediction); err != nil {
			return 0, err
		}
	}

	return io.WriteString(w.output, sb.String())
}

// writeDetails writes the probabilities and the feature vector.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, p *model.Prediction) error {
	info := model.GetLabelInfo(p.Label)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Severity:          %s\n", info.Severity)
	if p.RegisteredDomain != "" {
		fmt.Fprintf(sb, "Registered domain: %s\n", p.RegisteredDomain)
	}
	if p.ModelChecksum != "" {
		fmt.Fprintf(sb, "Model checksum:    %s\n", p.ModelChecksum)
	}
	fmt.Fprintf(sb, "Recommendation:    %s\n\n", info.Recommendation)

	rows := make([][]string, 0, len(p.Probabilities))
	for _, cp := range p.Probabilities {
		rows = append(rows, []string{cp.Class, formatFloat(cp.Probability)})
	}
	if err := renderTable(sb, []string{"Class", "Probability"}, rows); err != nil {
		return err
	}
	sb.WriteString("\n")

	names, values := features.Names(), p.Features.Values()
	rows = rows[:0]
	for i, name := range names {
		rows = append(rows, []string{name, formatFloat(values[i])})
	}
	return renderTable(sb, []string{"Feature", "Value"}, rows)
}

// WriteBatch outputs a table of predictions followed by a severity summary.
func (w *SimpleWriter) WriteBatch(predictions []*model.Prediction) (int, error) {
	var sb strings.Builder

	summary := w.summarize(predictions)
	w.writeHeader(&sb, "URLGUARD BATCH REPORT")
	fmt.Fprintf(&sb, "Generated: %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "URLs:      %d (%d failed)\n\n", summary.Total, summary.Failed)

	rows := make([][]string, 0, len(predictions))
	for i, p := range predictions {
		if p == nil {
			continue
		}
		label, confidence, severity := p.Label, formatFloat(p.Confidence()), p.Severity().String()
		if p.Failed() {
			label, confidence, severity = "error: "+truncateString(p.Error, 40), "-", "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncateString(p.URL, 60),
			label,
			confidence,
			severity,
		})
	}
	if err := renderTable(&sb, []string{"#", "URL", "Label", "Confidence", "Severity"}, rows); err != nil {
		return 0, err
	}
	sb.WriteString("\n")

	w.writeSummary(&sb, summary)
	return io.WriteString(w.output, sb.String())
}

// writeHeader writes a boxed section title.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeSummary writes the severity and label summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s *model.BatchSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  CRITICAL: %d\n", s.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", s.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", s.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n", s.LowCount)
	fmt.Fprintf(sb, "  INFO:     %d\n", s.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  MALICIOUS: %d of %d\n\n", s.Malicious, s.Total-s.Failed)

	for _, lc := range s.Labels {
		fmt.Fprintf(sb, "  [%s] %s: %d\n", getSeverityIndicator(model.GetSeverity(lc.Label)), lc.Label, lc.Count)
	}
	if len(s.Labels) > 0 {
		sb.WriteString("\n")
	}
}

// WriteEvaluation outputs accuracy, F1, AUC, per-class metrics and the confusion matrix.
func (w *SimpleWriter) WriteEvaluation(result *evaluate.Result) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "URLGUARD EVALUATION REPORT")
	fmt.Fprintf(&sb, "Samples:     %d\n", result.Total)
	fmt.Fprintf(&sb, "Accuracy:    %s\n", formatFloat(result.Accuracy))
	fmt.Fprintf(&sb, "Weighted F1: %s\n", formatFloat(result.WeightedF1))
	if result.AUCAvailable {
		fmt.Fprintf(&sb, "ROC AUC:     %s\n\n", formatFloat(result.AUC))
	} else {
		sb.WriteString("ROC AUC:     n/a\n\n")
	}

	rows := make([][]string, 0, len(result.PerClass))
	for _, m := range result.PerClass {
		rows = append(rows, []string{
			m.Label,
			formatFloat(m.Precision),
			formatFloat(m.Recall),
			formatFloat(m.F1),
			strconv.Itoa(m.Support),
		})
	}
	if err := renderTable(&sb, []string{"Label", "Precision", "Recall", "F1", "Support"}, rows); err != nil {
		return 0, err
	}
	sb.WriteString("\nConfusion matrix (rows: true, columns: predicted)\n")

	header := append([]string{""}, result.Labels...)
	rows = rows[:0]
	for i, label := range result.Labels {
		row := []string{label}
		for _, n := range result.Confusion[i] {
			row = append(row, strconv.Itoa(n))
		}
		rows = append(rows, row)
	}
	if err := renderTable(&sb, header, rows); err != nil {
		return 0, err
	}

	return io.WriteString(w.output, sb.String())
}

// renderTable writes an ASCII table to sb.
func renderTable(sb *strings.Builder, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(sb)

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// getSeverityIndicator returns a visual indicator for the severity level.
func getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
