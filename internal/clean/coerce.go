package clean

import (
	"math"
	"strconv"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// Coerce forces the columns named in rules into their target representation
// and returns the new table with, per column, the number of cells that could
// not be parsed and became missing. Columns absent from t are skipped.
//
// Numeric coercion never fails: unparseable text becomes missing and is left
// to the missing-value stage. Text coercion trims, then applies the case
// policy. Applying the same rules twice changes nothing the second time.
func Coerce(t *table.Table, rules map[string]CoerceRule) (*table.Table, map[string]int) {
	failed := make(map[string]int)
	if len(rules) == 0 {
		return t.Clone(), failed
	}
	convs := make([]*coercer, t.Width())
	for j, c := range t.Columns() {
		if r, ok := rules[c]; ok {
			convs[j] = newCoercer(r)
		}
	}
	cols := t.Columns()
	b := table.NewBuilder(cols, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j, cv := range convs {
			if cv == nil {
				continue
			}
			v, ok := cv.apply(row[j])
			if !ok {
				failed[cols[j]]++
			}
			row[j] = v
		}
		b.Append(row)
	}
	return b.Table(), failed
}

// coercer holds the per-call case mappers; cases.Caser is stateful and must
// not be shared between goroutines.
type coercer struct {
	rule  CoerceRule
	caser cases.Caser
}

func newCoercer(r CoerceRule) *coercer {
	c := &coercer{rule: r}
	switch r.Target {
	case CoerceUpper:
		c.caser = cases.Upper(language.English)
	case CoerceTitle:
		c.caser = cases.Title(language.English)
	case CoerceLower:
		c.caser = cases.Lower(language.English)
	}
	return c
}

// apply converts one cell. ok is false only when a non-missing cell had to
// be turned into missing.
func (c *coercer) apply(v table.Value) (table.Value, bool) {
	if v.IsMissing() {
		return v, true
	}
	if c.rule.Target == CoerceNumeric {
		if v.IsNumber() {
			return v, true
		}
		s, _ := v.Text()
		f, ok := parseNumber(s)
		if !ok {
			return table.Null(), false
		}
		return table.Num(f), true
	}

	s := v.String()
	s = strings.TrimSpace(s)
	if s == "" {
		return table.Null(), true
	}
	if c.rule.Fold {
		s = unidecode.Unidecode(s)
	}
	if c.rule.Target != CoerceStrip {
		s = c.caser.String(s)
	}
	return table.Str(s), true
}

// parseNumber accepts plain decimals plus "," thousands separators.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// textRules keeps only the text-normalizing rules.
func textRules(rules map[string]CoerceRule) map[string]CoerceRule {
	out := make(map[string]CoerceRule, len(rules))
	for c, r := range rules {
		if r.textual() {
			out[c] = r
		}
	}
	return out
}
