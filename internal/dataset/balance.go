package dataset

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Strategy selects how Balance equalizes class counts.
type Strategy string

const (
	// StrategyNone keeps the table as is.
	StrategyNone Strategy = "none"

	// StrategyUndersample reduces every class to the size of the smallest one.
	StrategyUndersample Strategy = "under"

	// StrategyOversample grows every class to the size of the largest one
	// by drawing rows with replacement.
	StrategyOversample Strategy = "over"
)

// ParseStrategy converts a command line value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return StrategyNone, nil
	case "under", "undersample":
		return StrategyUndersample, nil
	case "over", "oversample":
		return StrategyOversample, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Balance returns a copy of t with equal class counts.
// The result is the same for the same input and seed. Rows are shuffled.
func Balance(t *Table, strategy Strategy, seed uint64) (*Table, error) {
	if strategy == StrategyNone {
		return t.Clone(), nil
	}
	if strategy != StrategyUndersample && strategy != StrategyOversample {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	if t.Rows() == 0 {
		return nil, ErrEmptyDataset
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // sampling, not security

	labels, groups := t.rowsByLabel()
	target := len(groups[labels[0]])
	for _, label := range labels[1:] {
		n := len(groups[label])
		if strategy == StrategyUndersample {
			target = min(target, n)
		} else {
			target = max(target, n)
		}
	}

	rows := make([]int, 0, target*len(labels))
	for _, label := range labels {
		group := groups[label]
		if strategy == StrategyUndersample {
			rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
			rows = append(rows, group[:target]...)
			continue
		}
		rows = append(rows, group...)
		for range target - len(group) {
			rows = append(rows, group[rng.IntN(len(group))])
		}
	}

	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return t.subset(rows), nil
}
