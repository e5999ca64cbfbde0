// Package stats holds the numeric building blocks shared by the cleaning
// pipeline and the reporting side: linear-interpolation quantiles, IQR
// bounds, central tendency and spread, plus the descriptive-statistics and
// correlation engines built on them.
package stats

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrEmptyDistribution is returned when a statistic is requested over a
	// column that has no usable values.
	ErrEmptyDistribution = errors.New("empty distribution")
	// ErrColumnNotFound is returned when a requested column is not in the table.
	ErrColumnNotFound = errors.New("column not found")
)

// DefaultMultiplier is the Tukey fence factor applied to the IQR.
const DefaultMultiplier = 1.5

// Sorted returns a sorted copy of vals.
func Sorted(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// Quantile returns the q-quantile of an already sorted slice using linear
// interpolation between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Bounds are the IQR fences of one column.
type Bounds struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	IQR   float64 `json:"iqr"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// IQRBounds computes [Q1-k*IQR, Q3+k*IQR] over vals. ok is false when vals
// is empty. A non-positive k falls back to DefaultMultiplier.
func IQRBounds(vals []float64, k float64) (b Bounds, ok bool) {
	if len(vals) == 0 {
		return Bounds{}, false
	}
	if k <= 0 {
		k = DefaultMultiplier
	}
	s := Sorted(vals)
	b.Q1 = Quantile(s, 0.25)
	b.Q3 = Quantile(s, 0.75)
	b.IQR = b.Q3 - b.Q1
	b.Lower = b.Q1 - k*b.IQR
	b.Upper = b.Q3 + k*b.IQR
	return b, true
}

// Contains reports whether v lies inside the closed interval.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Mean is the arithmetic mean; NaN for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Median is the 0.5 quantile.
func Median(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, ErrEmptyDistribution
	}
	return Quantile(Sorted(vals), 0.5), nil
}

// Mode returns the most frequent value. Ties go to the smallest value so the
// result does not depend on input order.
func Mode(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, ErrEmptyDistribution
	}
	counts := make(map[float64]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	best, bestN := 0.0, 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, nil
}

// ModeText is Mode for text; ties go to the lexicographically smallest.
func ModeText(vals []string) (string, error) {
	if len(vals) == 0 {
		return "", ErrEmptyDistribution
	}
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, nil
}

// Variance is the sample variance (n-1 denominator), computed with
// Welford's update. Fewer than two values yield 0.
func Variance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var n int
	var mean, m2 float64
	for _, x := range vals {
		n++
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	return m2 / float64(n-1)
}

// MinMax returns the extremes of vals.
func MinMax(vals []float64) (lo, hi float64) {
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
