package clean

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// Dedupe removes rows that repeat an earlier row across all columns. The
// first occurrence survives and row order is kept. It returns the number of
// rows removed.
func Dedupe(t *table.Table) (*table.Table, int) {
	b := table.NewBuilder(t.Columns(), t.Len())
	seen := make(map[string]struct{}, t.Len())
	var sb strings.Builder
	for i := 0; i < t.Len(); i++ {
		sb.Reset()
		for j := 0; j < t.Width(); j++ {
			writeKey(&sb, t.At(i, j))
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		b.Append(t.Row(i))
	}
	return b.Table(), t.Len() - b.Len()
}

// writeKey appends a kind-tagged rendering of v so that the number 1 and the
// text "1" never collide.
func writeKey(sb *strings.Builder, v table.Value) {
	switch v.Kind() {
	case table.Number:
		f, _ := v.Float()
		sb.WriteByte('n')
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case table.Text:
		s, _ := v.Text()
		sb.WriteByte('s')
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	default:
		sb.WriteByte('m')
	}
	sb.WriteByte(0x1f)
}
