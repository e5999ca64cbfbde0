package clean

import "github.com/KaramelBytes/nbaclean-cli/internal/table"

// Classify splits the table's columns into numeric and categorical sets,
// both in table order. A column is numeric when every non-missing cell is a
// number; a column with no values at all is treated as numeric.
func Classify(t *table.Table) (numeric, categorical []string) {
	if t == nil {
		return nil, nil
	}
	for _, c := range t.Columns() {
		if t.NumericColumn(c) {
			numeric = append(numeric, c)
		} else {
			categorical = append(categorical, c)
		}
	}
	return numeric, categorical
}

// kinds resolves the Kind of every column: declared kinds win, the rest are
// classified from the data.
func kinds(t *table.Table, specs []ColumnSpec) map[string]Kind {
	out := make(map[string]Kind, t.Width())
	num, cat := Classify(t)
	for _, c := range num {
		out[c] = KindNumeric
	}
	for _, c := range cat {
		out[c] = KindCategorical
	}
	for _, cs := range specs {
		if cs.Kind != "" && t.Has(cs.Name) {
			out[cs.Name] = cs.Kind
		}
	}
	return out
}
