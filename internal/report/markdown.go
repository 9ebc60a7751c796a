package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/urlguard/internal/evaluate"
	"github.com/nao1215/urlguard/internal/features"
	"github.com/nao1215/urlguard/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs a single prediction in Markdown format.
func (w *MarkdownWriter) Write(prediction *model.Prediction) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("URL Prediction")
	md.PlainText("")

	if prediction.Failed() {
		md.Cautionf("Prediction for `%s` failed: %s", prediction.URL, prediction.Error)
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	info := model.GetLabelInfo(prediction.Label)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + truncateString(prediction.URL, 80) + "`"},
			{"Label", "**" + prediction.Label + "**"},
			{"Confidence", formatFloat(prediction.Confidence())},
			{"Severity", severityBadge(info.Severity)},
			{"Registered Domain", orDash(prediction.RegisteredDomain)},
			{"Model Checksum", orDash(prediction.ModelChecksum)},
			{"Predicted At", prediction.Timestamp.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
	w.writeLabelAlert(md, prediction.Label, info)

	md.H2("Class Probabilities")
	md.PlainText("")
	rows := make([][]string, 0, len(prediction.Probabilities))
	for _, cp := range prediction.Probabilities {
		rows = append(rows, []string{cp.Class, formatFloat(cp.Probability)})
	}
	md.Table(markdown.TableSet{Header: []string{"Class", "Probability"}, Rows: rows})
	md.PlainText("")

	names, values := features.Names(), prediction.Features.Values()
	rows = make([][]string, 0, len(names))
	for i, name := range names {
		rows = append(rows, []string{name, formatFloat(values[i])})
	}
	md.H2("Features")
	md.PlainText("")
	md.Table(markdown.TableSet{Header: []string{"Feature", "Value"}, Rows: rows})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeLabelAlert writes an alert matching the severity of the label.
func (w *MarkdownWriter) writeLabelAlert(md *markdown.Markdown, label string, info model.LabelInfo) {
	switch info.Severity {
	case model.SeverityCritical:
		md.Cautionf("%s: %s %s", label, info.Description, info.Recommendation)
	case model.SeverityHigh:
		md.Warningf("%s: %s %s", label, info.Description, info.Recommendation)
	case model.SeverityMedium:
		md.Importantf("%s: %s %s", label, info.Description, info.Recommendation)
	case model.SeverityLow:
		md.Note(fmt.Sprintf("%s: %s", label, info.Description))
	default:
		md.Tip(info.Description)
	}
	md.PlainText("")
}

// WriteBatch outputs a summary, a label distribution chart and the per-URL table.
func (w *MarkdownWriter) WriteBatch(predictions []*model.Prediction) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := w.summarize(predictions)

	md.H1("URL Batch Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"URLs", strconv.Itoa(summary.Total)},
			{"Failed", strconv.Itoa(summary.Failed)},
			{"Malicious", strconv.Itoa(summary.Malicious)},
		},
	})
	md.PlainText("")

	w.writeSummary(md, summary)

	md.H2("Predictions")
	md.PlainText("")
	rows := make([][]string, 0, len(predictions))
	for i, p := range predictions {
		if p == nil {
			continue
		}
		if p.Failed() {
			rows = append(rows, []string{strconv.Itoa(i + 1), "`" + truncateString(p.URL, 60) + "`", "❌ " + truncateString(p.Error, 50), "-", "-"})
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			"`" + truncateString(p.URL, 60) + "`",
			p.Label,
			formatFloat(p.Confidence()),
			severityBadge(p.Severity()),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Label", "Confidence", "Severity"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s *model.BatchSummary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(s.CriticalCount)},
			{"🟠 High", strconv.Itoa(s.HighCount)},
			{"🟡 Medium", strconv.Itoa(s.MediumCount)},
			{"🔵 Low", strconv.Itoa(s.LowCount)},
			{"⚪ Info", strconv.Itoa(s.InfoCount)},
		},
	})
	md.PlainText("")

	if len(s.Labels) > 0 {
		w.writePieChart(md, s)
	}

	switch {
	case s.CriticalCount > 0:
		md.Cautionf("%d URL(s) classified as malware. Block them before anyone opens them.", s.CriticalCount)
	case s.HighCount > 0:
		md.Warningf("%d URL(s) classified as phishing or malicious.", s.HighCount)
	case s.Malicious > 0:
		md.Importantf("%d URL(s) look suspicious.", s.Malicious)
	case s.Failed > 0:
		md.Note(fmt.Sprintf("%d URL(s) could not be classified.", s.Failed))
	default:
		md.Tip("No malicious URLs detected.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the label distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.BatchSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Label Distribution"),
		piechart.WithShowData(true),
	)

	for _, lc := range s.Labels {
		chart.LabelAndIntValue(lc.Label, uint64(lc.Count)) //nolint:gosec // counts are never negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteEvaluation outputs the metrics in Markdown format.
func (w *MarkdownWriter) WriteEvaluation(result *evaluate.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	auc := "n/a"
	if result.AUCAvailable {
		auc = formatFloat(result.AUC)
	}

	md.H1("Model Evaluation")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Samples", strconv.Itoa(result.Total)},
			{"Accuracy", formatFloat(result.Accuracy)},
			{"Weighted F1", formatFloat(result.WeightedF1)},
			{"ROC AUC (weighted OvR)", auc},
		},
	})
	md.PlainText("")

	md.H2("Per-Class Metrics")
	md.PlainText("")
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
	md.Table(markdown.TableSet{
		Header: []string{"Label", "Precision", "Recall", "F1", "Support"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Confusion Matrix")
	md.PlainText("")
	md.PlainText("Rows are true labels, columns are predicted labels.")
	md.PlainText("")
	header := append([]string{"true \\ predicted"}, result.Labels...)
	rows = make([][]string, 0, len(result.Labels))
	for i, label := range result.Labels {
		row := []string{label}
		for _, n := range result.Confusion[i] {
			row = append(row, strconv.Itoa(n))
		}
		rows = append(rows, row)
	}
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [urlguard](https://github.com/nao1215/urlguard)*")
}

func severityBadge(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴 Critical"
	case model.SeverityHigh:
		return "🟠 High"
	case model.SeverityMedium:
		return "🟡 Medium"
	case model.SeverityLow:
		return "🔵 Low"
	default:
		return "⚪ Info"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
