// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output with tables and a label chart
//
// Every writer can render a single prediction, a batch of predictions
// with a summary, and the metrics of an evaluation run. Writers implement
// the Writer interface, allowing them to be used interchangeably and
// composed for multi-format output.
package report
