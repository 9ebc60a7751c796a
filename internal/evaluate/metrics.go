package evaluate

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	// ErrEmpty is returned when there is nothing to evaluate.
	ErrEmpty = errors.New("no samples to evaluate")

	// ErrLengthMismatch is returned when the label and probability slices differ in length.
	ErrLengthMismatch = errors.New("inputs have different lengths")
)

// Result holds the metrics of one evaluation run.
type Result struct {
	// Total is the number of evaluated samples.
	Total int `json:"total"`

	// Accuracy is the fraction of correct predictions.
	Accuracy float64 `json:"accuracy"`

	// WeightedF1 is the per-class F1 averaged with support weights.
	WeightedF1 float64 `json:"weighted_f1"`

	// AUC is the one-vs-rest ROC AUC averaged with support weights.
	// It is only meaningful when AUCAvailable is true.
	AUC float64 `json:"auc"`

	// AUCAvailable is false when no class had both positive and negative samples
	// or no probabilities were given.
	AUCAvailable bool `json:"auc_available"`

	// Labels is the sorted union of true and predicted labels.
	// It indexes both dimensions of Confusion.
	Labels []string `json:"labels"`

	// Confusion[i][j] counts samples of true label Labels[i] predicted as Labels[j].
	Confusion [][]int `json:"confusion"`

	// PerClass holds the metrics of every label, in Labels order.
	PerClass []ClassMetrics `json:"per_class"`
}

// ClassMetrics holds the metrics of a single label.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluate compares predicted labels against true labels.
//
// proba may be nil. Otherwise proba[i] holds the probability of each entry
// of classes for sample i, and is used for the AUC.
func Evaluate(yTrue, yPred []string, proba [][]float64, classes []string) (*Result, error) {
	if len(yTrue) == 0 {
		return nil, ErrEmpty
	}
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d true labels, %d predictions", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if proba != nil && len(proba) != len(yTrue) {
		return nil, fmt.Errorf("%w: %d true labels, %d probability rows", ErrLengthMismatch, len(yTrue), len(proba))
	}

	labels := unionSorted(yTrue, yPred)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	r := &Result{
		Total:     len(yTrue),
		Labels:    labels,
		Confusion: make([][]int, len(labels)),
		PerClass:  make([]ClassMetrics, len(labels)),
	}
	for i := range r.Confusion {
		r.Confusion[i] = make([]int, len(labels))
	}

	correct := 0
	for i := range yTrue {
		r.Confusion[index[yTrue[i]]][index[yPred[i]]]++
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	r.Accuracy = float64(correct) / float64(r.Total)

	for i, label := range labels {
		r.PerClass[i] = classMetrics(label, i, r.Confusion)
		r.WeightedF1 += r.PerClass[i].F1 * float64(r.PerClass[i].Support)
	}
	r.WeightedF1 /= float64(r.Total)

	if proba != nil {
		r.AUC, r.AUCAvailable = weightedAUC(yTrue, proba, classes)
	}
	return r, nil
}

// classMetrics derives precision, recall and F1 of label i from the confusion matrix.
func classMetrics(label string, i int, confusion [][]int) ClassMetrics {
	tp := confusion[i][i]
	support, predicted := 0, 0
	for j := range confusion {
		support += confusion[i][j]
		predicted += confusion[j][i]
	}

	m := ClassMetrics{Label: label, Support: support}
	if predicted > 0 {
		m.Precision = float64(tp) / float64(predicted)
	}
	if support > 0 {
		m.Recall = float64(tp) / float64(support)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// weightedAUC averages the one-vs-rest AUC of every class with its support.
// Classes without positives or without negatives are skipped.
func weightedAUC(yTrue []string, proba [][]float64, classes []string) (float64, bool) {
	total, weights := 0.0, 0
	for c, class := range classes {
		scores := make([]float64, len(yTrue))
		positive := make([]bool, len(yTrue))
		nPos := 0
		valid := true
		for i := range yTrue {
			if c >= len(proba[i]) {
				valid = false
				break
			}
			scores[i] = proba[i][c]
			positive[i] = yTrue[i] == class
			if positive[i] {
				nPos++
			}
		}
		if !valid || nPos == 0 || nPos == len(yTrue) {
			continue
		}

		total += binaryAUC(scores, positive, nPos) * float64(nPos)
		weights += nPos
	}

	if weights == 0 {
		return 0, false
	}
	return total / float64(weights), true
}

// binaryAUC computes the ROC AUC with the Mann-Whitney rank statistic.
// Tied scores receive their average rank.
func binaryAUC(scores []float64, positive []bool, nPos int) float64 {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	rankSum := 0.0
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && scores[order[end]] == scores[order[start]] {
			end++
		}
		// Ranks are 1-based: positions start..end-1 share the mean rank.
		avgRank := float64(start+end+1) / 2
		for k := start; k < end; k++ {
			if positive[order[k]] {
				rankSum += avgRank
			}
		}
		start = end
	}

	nNeg := len(scores) - nPos
	return (rankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
}

// unionSorted returns the sorted distinct values of a and b.
func unionSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
