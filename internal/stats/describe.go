package stats

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// maxOutlierSamples bounds ColumnStats.OutlierValues.
const maxOutlierSamples = 10

// ColumnStats is the descriptive summary of one numeric column.
type ColumnStats struct {
	Name           string    `json:"name"`
	Count          int       `json:"count"`
	Mean           float64   `json:"mean"`
	Median         float64   `json:"median"`
	Mode           float64   `json:"mode"`
	Std            float64   `json:"std"`
	Variance       float64   `json:"variance"`
	Min            float64   `json:"min"`
	Max            float64   `json:"max"`
	Q1             float64   `json:"q1"`
	Q3             float64   `json:"q3"`
	IQR            float64   `json:"iqr"`
	OutlierCount   int       `json:"outlier_count"`
	OutlierPercent float64   `json:"outlier_pct"`
	OutlierValues  []float64 `json:"outlier_values"`
}

// Summary maps column names to their statistics; Columns keeps request order.
type Summary struct {
	Columns []string               `json:"columns"`
	Stats   map[string]ColumnStats `json:"stats"`
}

// Get returns the statistics of one column.
func (s Summary) Get(name string) (ColumnStats, bool) {
	cs, ok := s.Stats[name]
	return cs, ok
}

// Describe computes ColumnStats for each requested column. Only numeric
// cells contribute; missing and text cells are skipped. Outliers are
// counted with the same IQR fences the cleaning pipeline filters on, but
// nothing is removed. Results are never cached: every call reads t afresh.
//
// A nil columns slice selects every numeric column that holds at least one
// value.
func Describe(t *table.Table, columns []string, multiplier float64) (Summary, error) {
	if columns == nil {
		columns = NumericColumns(t)
	}
	sum := Summary{Columns: make([]string, 0, len(columns)), Stats: make(map[string]ColumnStats, len(columns))}
	for _, col := range columns {
		if !t.Has(col) {
			return Summary{}, fmt.Errorf("describe %q: %w", col, ErrColumnNotFound)
		}
		cs, err := DescribeValues(col, t.Floats(col), multiplier)
		if err != nil {
			return Summary{}, err
		}
		sum.Columns = append(sum.Columns, col)
		sum.Stats[col] = cs
	}
	return sum, nil
}

// NumericColumns lists, in table order, the numeric columns with at least
// one number.
func NumericColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if t.NumericColumn(c) && len(t.Floats(c)) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// DescribeValues summarizes one column's values given in row order.
func DescribeValues(name string, vals []float64, multiplier float64) (ColumnStats, error) {
	if len(vals) == 0 {
		return ColumnStats{}, fmt.Errorf("describe %q: %w", name, ErrEmptyDistribution)
	}
	sorted := Sorted(vals)
	cs := ColumnStats{
		Name:   name,
		Count:  len(vals),
		Mean:   Mean(vals),
		Median: Quantile(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	cs.Mode, _ = Mode(vals)
	cs.Variance = Variance(vals)
	cs.Std = math.Sqrt(cs.Variance)

	b, _ := IQRBounds(vals, multiplier)
	cs.Q1, cs.Q3, cs.IQR = b.Q1, b.Q3, b.IQR
	cs.OutlierValues = []float64{}
	for _, v := range vals {
		if b.Contains(v) {
			continue
		}
		cs.OutlierCount++
		if len(cs.OutlierValues) < maxOutlierSamples {
			cs.OutlierValues = append(cs.OutlierValues, v)
		}
	}
	cs.OutlierPercent = float64(cs.OutlierCount) * 100 / float64(cs.Count)
	return cs, nil
}
