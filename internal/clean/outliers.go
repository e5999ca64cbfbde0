package clean

import (
	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// OutlierResult describes what FilterOutliers did.
type OutlierResult struct {
	Bounds  map[string]stats.Bounds // fences used, per governed column
	Counts  map[string]int          // out-of-bounds cells, per column
	Removed int                     // rows removed
	Percent float64                 // Removed over rows at entry, in percent
	Skipped []string                // requested columns that are absent or not numeric
}

// FilterOutliers removes rows holding a value outside its column's IQR
// fences. Fences are computed once from the table as it is at entry and are
// not revisited as rows go, so the result does not depend on row or column
// order. Missing cells never trigger removal. A disabled policy returns an
// unchanged copy.
func FilterOutliers(t *table.Table, policy OutlierPolicy) (*table.Table, OutlierResult) {
	res := OutlierResult{Bounds: make(map[string]stats.Bounds), Counts: make(map[string]int)}
	if !policy.Enabled {
		return t.Clone(), res
	}

	cols := policy.Columns
	if len(cols) == 0 {
		num, _ := Classify(t)
		cols = num
	}
	type fence struct {
		j int
		b stats.Bounds
	}
	var fences []fence
	for _, c := range cols {
		j, ok := t.Index(c)
		if !ok || !t.NumericColumn(c) {
			res.Skipped = append(res.Skipped, c)
			continue
		}
		b, ok := stats.IQRBounds(t.Floats(c), policy.Multiplier)
		if !ok {
			continue
		}
		res.Bounds[c] = b
		fences = append(fences, fence{j: j, b: b})
	}

	names := t.Columns()
	out := table.NewBuilder(names, t.Len())
	for i := 0; i < t.Len(); i++ {
		keep := true
		for _, f := range fences {
			v, ok := t.At(i, f.j).Float()
			if !ok || f.b.Contains(v) {
				continue
			}
			res.Counts[names[f.j]]++
			keep = false
		}
		if keep {
			out.Append(t.Row(i))
		}
	}
	res.Removed = t.Len() - out.Len()
	if t.Len() > 0 {
		res.Percent = float64(res.Removed) * 100 / float64(t.Len())
	}
	return out.Table(), res
}
