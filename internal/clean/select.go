package clean

import "github.com/KaramelBytes/nbaclean-cli/internal/table"

// Select applies a column selection. Keep names missing from the input and
// Drop names missing from the input are reported back, not treated as errors.
func Select(t *table.Table, sel Selection) (*table.Table, []string) {
	if len(sel.Keep) == 0 && len(sel.Drop) == 0 {
		return t.Clone(), nil
	}
	var skipped []string
	keep := make(map[string]bool, t.Width())
	if len(sel.Keep) > 0 {
		for _, c := range sel.Keep {
			if t.Has(c) {
				keep[c] = true
			} else {
				skipped = append(skipped, c)
			}
		}
	} else {
		for _, c := range t.Columns() {
			keep[c] = true
		}
	}
	for _, c := range sel.Drop {
		if t.Has(c) {
			delete(keep, c)
		} else {
			skipped = append(skipped, c)
		}
	}

	var cols []string
	var idx []int
	for j, c := range t.Columns() {
		if keep[c] {
			cols = append(cols, c)
			idx = append(idx, j)
		}
	}
	b := table.NewBuilder(cols, t.Len())
	row := make(table.Row, len(idx))
	for i := 0; i < t.Len(); i++ {
		for k, j := range idx {
			row[k] = t.At(i, j)
		}
		b.Append(row)
	}
	return b.Table(), skipped
}
