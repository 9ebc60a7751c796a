package dataset

import (
	"slices"

	"github.com/nao1215/urlguard/internal/features"
	"github.com/nao1215/urlguard/internal/model"
)

// Table is a feature table: one row per URL, one column per feature.
type Table struct {
	// Columns are the feature names, in canonical order.
	Columns []string

	// URLs holds the source URL of every row.
	URLs []string

	// Values holds the feature values of every row, in Columns order.
	Values [][]float64

	// Labels holds the class of every row.
	Labels []string
}

// BuildTable extracts the features of every sample.
func BuildTable(samples []Sample) *Table {
	t := &Table{
		Columns: features.Names(),
		URLs:    make([]string, len(samples)),
		Values:  make([][]float64, len(samples)),
		Labels:  make([]string, len(samples)),
	}
	for i, s := range samples {
		t.URLs[i] = s.URL
		t.Values[i] = features.Extract(s.URL).Values()
		t.Labels[i] = s.Label
	}
	return t
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return len(t.URLs)
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: slices.Clone(t.Columns),
		URLs:    slices.Clone(t.URLs),
		Values:  make([][]float64, len(t.Values)),
		Labels:  slices.Clone(t.Labels),
	}
	for i, row := range t.Values {
		c.Values[i] = slices.Clone(row)
	}
	return c
}

// Column returns a copy of the values of column j.
func (t *Table) Column(j int) []float64 {
	col := make([]float64, len(t.Values))
	for i, row := range t.Values {
		col[i] = row[j]
	}
	return col
}

// subset returns a new table holding the given rows, in that order.
// Rows may repeat.
func (t *Table) subset(rows []int) *Table {
	s := &Table{
		Columns: slices.Clone(t.Columns),
		URLs:    make([]string, len(rows)),
		Values:  make([][]float64, len(rows)),
		Labels:  make([]string, len(rows)),
	}
	for i, r := range rows {
		s.URLs[i] = t.URLs[r]
		s.Values[i] = slices.Clone(t.Values[r])
		s.Labels[i] = t.Labels[r]
	}
	return s
}

// CollapseBinary returns a copy of t where every label except benign
// becomes malignant. It turns a multi-class dataset into a binary one.
func CollapseBinary(t *Table) *Table {
	c := t.Clone()
	for i, label := range c.Labels {
		c.Labels[i] = model.BinaryLabel(label)
	}
	return c
}

// rowsByLabel groups row indices by label. Labels are returned sorted.
func (t *Table) rowsByLabel() ([]string, map[string][]int) {
	groups := make(map[string][]int)
	for i, label := range t.Labels {
		groups[label] = append(groups[label], i)
	}
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels, groups
}
