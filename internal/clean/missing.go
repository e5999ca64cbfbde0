package clean

import (
	"fmt"

	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// MissingResult describes what ResolveMissing did.
type MissingResult struct {
	Filled  map[string]int // cells filled, per column
	Dropped int            // rows removed by drop policies
}

// ResolveMissing applies each column's missing-value policy. Columns
// without a spec (or a spec without a policy) fall back to defaults by
// kind.
//
// Fill statistics are computed once, from the column's non-missing values
// before any row of this invocation is dropped. A row is dropped when it is
// missing in any drop-governed column. Median or mode over a column that
// has nothing to compute from, while there are cells to fill, is an
// ErrEmptyDistribution; median over a categorical column, or a constant that
// is not a number for a numeric column, is an ErrConfig.
func ResolveMissing(t *table.Table, specs []ColumnSpec, defaults Defaults) (*table.Table, MissingResult, error) {
	res := MissingResult{Filled: make(map[string]int)}
	kind := kinds(t, specs)
	declared := make(map[string]MissingPolicy, len(specs))
	for _, cs := range specs {
		if cs.Missing.Action != "" {
			declared[cs.Name] = cs.Missing
		}
	}

	cols := t.Columns()
	policies := make([]MissingPolicy, len(cols))
	fills := make([]table.Value, len(cols))
	var dropCols []int
	for j, c := range cols {
		p, ok := declared[c]
		if !ok {
			if kind[c] == KindNumeric {
				p = defaults.Numeric
			} else {
				p = defaults.Categorical
			}
		}
		policies[j] = p
		switch p.Action {
		case MissingDrop:
			dropCols = append(dropCols, j)
		case MissingConstant:
			v, ok := p.constantValue(kind[c])
			if !ok {
				return nil, res, configErr(StageMissing, c, "constant %q is not a number", p.Value)
			}
			fills[j] = v
		case MissingMedian, MissingMode:
			if !hasMissing(t, j) {
				continue
			}
			v, err := fillStatistic(t, c, kind[c], p.Action)
			if err != nil {
				return nil, res, err
			}
			fills[j] = v
		}
	}

	b := table.NewBuilder(cols, t.Len())
rows:
	for i := 0; i < t.Len(); i++ {
		for _, j := range dropCols {
			if t.At(i, j).IsMissing() {
				res.Dropped++
				continue rows
			}
		}
		row := t.Row(i)
		for j := range row {
			if row[j].IsMissing() && fills[j].Kind() != table.Missing {
				row[j] = fills[j]
				res.Filled[cols[j]]++
			}
		}
		b.Append(row)
	}
	return b.Table(), res, nil
}

func hasMissing(t *table.Table, j int) bool {
	for i := 0; i < t.Len(); i++ {
		if t.At(i, j).IsMissing() {
			return true
		}
	}
	return false
}

func fillStatistic(t *table.Table, col string, k Kind, action MissingAction) (table.Value, error) {
	if k == KindNumeric {
		vals := t.Floats(col)
		if len(vals) == 0 {
			return table.Null(), &StageError{Stage: StageMissing, Column: col, Err: fmt.Errorf("%s fill: %w", action, ErrEmptyDistribution)}
		}
		var f float64
		if action == MissingMedian {
			f, _ = stats.Median(vals)
		} else {
			f, _ = stats.Mode(vals)
		}
		return table.Num(f), nil
	}

	if action == MissingMedian {
		return table.Null(), configErr(StageMissing, col, "median fill on a categorical column")
	}
	var vals []string
	orig := make(map[string]table.Value)
	for _, v := range t.Column(col) {
		if v.IsMissing() {
			continue
		}
		s := v.String()
		vals = append(vals, s)
		if _, ok := orig[s]; !ok {
			orig[s] = v
		}
	}
	if len(vals) == 0 {
		return table.Null(), &StageError{Stage: StageMissing, Column: col, Err: fmt.Errorf("mode fill: %w", ErrEmptyDistribution)}
	}
	m, _ := stats.ModeText(vals)
	return orig[m], nil
}
