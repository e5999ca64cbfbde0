package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// Coefficient is a Pearson r. An undefined correlation (zero variance or
// fewer than two paired observations) is held as NaN and is never reported
// as 0.
type Coefficient float64

// Undefined is the coefficient of a pair that has no correlation.
var Undefined = Coefficient(math.NaN())

// Defined reports whether c carries a real correlation value.
func (c Coefficient) Defined() bool { return !math.IsNaN(float64(c)) }

// String renders the coefficient with three decimals, or "n/a".
func (c Coefficient) String() string {
	if !c.Defined() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(c), 'f', 3, 64)
}

// MarshalJSON encodes an undefined coefficient as null.
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if !c.Defined() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(c), 'g', -1, 64)), nil
}

// Matrix is a symmetric Pearson correlation matrix over Columns.
type Matrix struct {
	Columns []string        `json:"columns"`
	Values  [][]Coefficient `json:"values"` // row-major, Values[i][j]
}

// At returns the coefficient between two named columns.
func (m Matrix) At(a, b string) (Coefficient, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return Undefined, false
	}
	return m.Values[ia][ib], true
}

// flatTolerance is the relative size below which a centered sum of squares
// is rounding noise rather than spread.
const flatTolerance = 1e-20

// pair holds the complete observations of two columns.
type pair struct {
	xs, ys []float64
}

func (p *pair) add(x, y float64) {
	p.xs = append(p.xs, x)
	p.ys = append(p.ys, y)
}

// r computes Pearson's r from centered sums, two passes over the pairs.
func (p *pair) r() Coefficient {
	if len(p.xs) < 2 {
		return Undefined
	}
	mx, my := Mean(p.xs), Mean(p.ys)
	var sxx, syy, sxy, rawX, rawY float64
	for i, x := range p.xs {
		y := p.ys[i]
		dx, dy := x-mx, y-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
		rawX += x * x
		rawY += y * y
	}
	if flat(sxx, rawX) || flat(syy, rawY) {
		return Undefined
	}
	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Undefined
	}
	return Coefficient(math.Max(-1, math.Min(1, r)))
}

// flat reports whether a centered sum of squares carries no spread: zero,
// or negligible next to the raw sum of squares.
func flat(centered, raw float64) bool {
	return centered <= 0 || centered <= flatTolerance*raw
}

// Correlate computes pairwise Pearson correlations for columns in the given
// order. Each pair uses only rows where both cells are numeric.
func Correlate(t *table.Table, columns []string) (Matrix, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		j, ok := t.Index(c)
		if !ok {
			return Matrix{}, fmt.Errorf("correlate %q: %w", c, ErrColumnNotFound)
		}
		idx[i] = j
	}
	n := len(columns)
	acc := make([][]pair, n)
	for i := range acc {
		acc[i] = make([]pair, n)
	}
	for row := 0; row < t.Len(); row++ {
		for a := 0; a < n; a++ {
			x, ok := t.At(row, idx[a]).Float()
			if !ok {
				continue
			}
			for b := a; b < n; b++ {
				y, ok := t.At(row, idx[b]).Float()
				if !ok {
					continue
				}
				acc[a][b].add(x, y)
			}
		}
	}
	m := Matrix{Columns: append([]string(nil), columns...), Values: make([][]Coefficient, n)}
	for a := range m.Values {
		m.Values[a] = make([]Coefficient, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := acc[a][b].r()
			if a == b && r.Defined() {
				r = 1
			}
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m, nil
}
