package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/nao1215/urlguard/internal/features"
)

// DefaultIQRFactor is the usual Tukey fence multiplier.
const DefaultIQRFactor = 1.5

// ClipOutliersIQR returns a copy of t where every non-binary column is
// clipped to [Q1 - k*IQR, Q3 + k*IQR]. Quartiles are linearly interpolated.
// Binary features are left untouched.
func ClipOutliersIQR(t *Table, k float64) (*Table, error) {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIQRFactor, k)
	}

	c := t.Clone()
	if c.Rows() == 0 {
		return c, nil
	}

	for j, name := range c.Columns {
		if features.IsBinary(name) {
			continue
		}

		col := c.Column(j)
		slices.Sort(col)
		q1 := quantile(col, 0.25)
		q3 := quantile(col, 0.75)
		iqr := q3 - q1
		lower, upper := q1-k*iqr, q3+k*iqr

		for i := range c.Values {
			c.Values[i][j] = min(max(c.Values[i][j], lower), upper)
		}
	}
	return c, nil
}

// quantile returns the q-quantile of sorted values with linear interpolation
// between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
