package clean

import (
	"math"
	"regexp"
	"strconv"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// Derive appends each derived column, or rewrites it in place when a column
// of that name already exists. Derivations whose inputs are absent are
// skipped and returned by name.
func Derive(t *table.Table, derived []DerivedColumn) (*table.Table, []string) {
	var skipped []string
	out := t
	for _, d := range derived {
		vals, ok := derive(out, d)
		if !ok {
			skipped = append(skipped, d.Name)
			continue
		}
		out = withColumn(out, d.Name, vals)
	}
	if out == t {
		out = t.Clone()
	}
	return out, skipped
}

func derive(t *table.Table, d DerivedColumn) ([]table.Value, bool) {
	switch d.Type {
	case DeriveRatio:
		num, ok1 := t.Index(d.Numerator)
		den, ok2 := t.Index(d.Denominator)
		if !ok1 || !ok2 {
			return nil, false
		}
		vals := make([]table.Value, t.Len())
		for i := range vals {
			n, okN := t.At(i, num).Float()
			m, okD := t.At(i, den).Float()
			if !okN || !okD || m == 0 {
				continue
			}
			vals[i] = table.Num(round(n/m, d.Digits))
		}
		return vals, true
	case DeriveFeetInches:
		src, ok := t.Index(d.Source)
		if !ok {
			return nil, false
		}
		vals := make([]table.Value, t.Len())
		for i := range vals {
			if in, ok := inches(t.At(i, src)); ok {
				vals[i] = table.Num(in)
			}
		}
		return vals, true
	}
	return nil, false
}

// withColumn returns a copy of t with column name set to vals.
func withColumn(t *table.Table, name string, vals []table.Value) *table.Table {
	cols := t.Columns()
	j, exists := t.Index(name)
	if !exists {
		cols = append(cols, name)
		j = len(cols) - 1
	}
	b := table.NewBuilder(cols, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		if !exists {
			row = append(row, table.Null())
		}
		row[j] = vals[i]
		b.Append(row)
	}
	return b.Table()
}

// round keeps digits decimals; digits 0 leaves the value untouched.
func round(v float64, digits int) float64 {
	if digits <= 0 {
		return v
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

var heightRe = regexp.MustCompile(`^\s*(\d+)\s*(?:-|'|ft)\s*(\d+(?:\.\d+)?)?\s*(?:"|in)?\s*$`)

// inches converts a height such as "6-10" or 6'10" to inches. A number is
// taken to be inches already.
func inches(v table.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	s, ok := v.Text()
	if !ok {
		return 0, false
	}
	m := heightRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	feet, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	in := 0.0
	if m[2] != "" {
		if in, err = strconv.ParseFloat(m[2], 64); err != nil {
			return 0, false
		}
	}
	return feet*12 + in, true
}
