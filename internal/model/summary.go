package model

import (
	"cmp"
	"slices"
	"time"
)

// BatchSummary is a condensed view of many predictions.
// It is used by the report writers to print an overview before the details.
type BatchSummary struct {
	// GeneratedAt is when the summary was created.
	GeneratedAt time.Time `json:"generated_at"`

	// Total is the number of URLs, failed ones included.
	Total int `json:"total"`

	// Failed is the number of URLs that could not be classified.
	Failed int `json:"failed"`

	// Malicious is the number of URLs with a non-benign label.
	Malicious int `json:"malicious"`

	// === Severity Summary ===

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Labels holds the number of URLs per predicted label, sorted by label.
	Labels []LabelCount `json:"labels,omitempty"`
}

// LabelCount is the number of predictions carrying a label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// NewBatchSummary summarizes predictions. Nil entries are skipped.
func NewBatchSummary(predictions []*Prediction, now time.Time) *BatchSummary {
	s := &BatchSummary{GeneratedAt: now}

	counts := make(map[string]int)
	for _, p := range predictions {
		if p == nil {
			continue
		}
		s.Total++
		if p.Failed() {
			s.Failed++
			continue
		}
		if p.IsMalicious() {
			s.Malicious++
		}
		counts[p.Label]++
		s.countSeverity(p.Severity())
	}

	for label, count := range counts {
		s.Labels = append(s.Labels, LabelCount{Label: label, Count: count})
	}
	slices.SortFunc(s.Labels, func(a, b LabelCount) int {
		return cmp.Compare(a.Label, b.Label)
	})
	return s
}

func (s *BatchSummary) countSeverity(severity Severity) {
	switch severity {
	case SeverityCritical:
		s.CriticalCount++
	case SeverityHigh:
		s.HighCount++
	case SeverityMedium:
		s.MediumCount++
	case SeverityLow:
		s.LowCount++
	case SeverityInfo:
		s.InfoCount++
	}
}
