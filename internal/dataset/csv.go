package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Default column names of raw datasets.
const (
	DefaultURLColumn   = "url"
	DefaultLabelColumn = "type"
)

// Sample is one labeled URL.
type Sample struct {
	URL   string
	Label string
}

// ReadOption configures ReadCSV.
type ReadOption func(*readOptions)

type readOptions struct {
	urlColumn   string
	labelColumn string
}

// WithURLColumn sets the name of the URL column.
func WithURLColumn(name string) ReadOption {
	return func(o *readOptions) {
		o.urlColumn = name
	}
}

// WithLabelColumn sets the name of the label column.
func WithLabelColumn(name string) ReadOption {
	return func(o *readOptions) {
		o.labelColumn = name
	}
}

// ReadCSV reads labeled URLs from a CSV document with a header row.
// Columns are located by name, so extra columns are ignored. Labels are
// trimmed; URLs are kept verbatim.
func ReadCSV(r io.Reader, opts ...ReadOption) ([]Sample, error) {
	o := readOptions{urlColumn: DefaultURLColumn, labelColumn: DefaultLabelColumn}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	urlIdx, labelIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case o.urlColumn:
			urlIdx = i
		case o.labelColumn:
			labelIdx = i
		}
	}
	if urlIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, o.urlColumn)
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, o.labelColumn)
	}

	samples := make([]Sample, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		if urlIdx >= len(record) || labelIdx >= len(record) {
			return nil, fmt.Errorf("CSV line %d: expected at least %d fields, got %d",
				line, max(urlIdx, labelIdx)+1, len(record))
		}
		samples = append(samples, Sample{
			URL:   record[urlIdx],
			Label: strings.TrimSpace(record[labelIdx]),
		})
	}
	return samples, nil
}

// WriteCSV writes t as CSV: url, one column per feature, then type.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+2)
	header = append(header, DefaultURLColumn)
	header = append(header, t.Columns...)
	header = append(header, DefaultLabelColumn)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(header))
	for i := range t.Rows() {
		record[0] = t.URLs[i]
		for j, v := range t.Values[i] {
			record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		record[len(record)-1] = t.Labels[i]
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
