package dataset

import "math"

// Summary describes a feature table.
type Summary struct {
	Rows    int           `json:"rows"`
	Columns []ColumnStats `json:"columns"`
	Classes []ClassCount  `json:"classes"`
}

// ColumnStats holds descriptive statistics of one feature column.
// Std is the sample standard deviation.
type ColumnStats struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// ClassCount is the number of rows of a class and its share of the table.
type ClassCount struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summarize computes per-column statistics and the class distribution.
func Summarize(t *Table) *Summary {
	s := &Summary{
		Rows:    t.Rows(),
		Columns: make([]ColumnStats, len(t.Columns)),
	}

	for j, name := range t.Columns {
		s.Columns[j] = columnStats(name, t.Column(j))
	}

	labels, groups := t.rowsByLabel()
	for _, label := range labels {
		n := len(groups[label])
		s.Classes = append(s.Classes, ClassCount{
			Label:   label,
			Count:   n,
			Percent: 100 * float64(n) / float64(s.Rows),
		})
	}
	return s
}

func columnStats(name string, col []float64) ColumnStats {
	stats := ColumnStats{Name: name}
	if len(col) == 0 {
		return stats
	}

	stats.Min, stats.Max = col[0], col[0]
	sum := 0.0
	for _, v := range col {
		stats.Min = min(stats.Min, v)
		stats.Max = max(stats.Max, v)
		sum += v
	}
	stats.Mean = sum / float64(len(col))

	if len(col) > 1 {
		sq := 0.0
		for _, v := range col {
			d := v - stats.Mean
			sq += d * d
		}
		stats.Std = math.Sqrt(sq / float64(len(col)-1))
	}
	return stats
}
