package clean

import (
	"math"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// ValidationResult describes what Validate did.
type ValidationResult struct {
	Violations    map[string]int // failing rows, per rule name
	Dropped       int            // rows removed by drop rules
	NotApplicable []string       // rules referencing absent columns
}

// Validate evaluates every rule against every row of t. Rows failing a drop
// rule are removed; warn rules only count. All counts are taken on the
// table as it is at entry, so a row failing a drop rule is still counted by
// any other rule it fails. A row whose referenced cell is missing or not a
// number does not violate the rule.
func Validate(t *table.Table, rules []ConsistencyRule) (*table.Table, ValidationResult) {
	res := ValidationResult{Violations: make(map[string]int)}
	var bound []boundRule
	for _, r := range rules {
		br, ok := bindRule(t, r)
		if !ok {
			res.NotApplicable = append(res.NotApplicable, r.Name)
			continue
		}
		res.Violations[r.Name] = 0
		bound = append(bound, br)
	}

	b := table.NewBuilder(t.Columns(), t.Len())
	for i := 0; i < t.Len(); i++ {
		keep := true
		for _, br := range bound {
			if br.holds(t, i) {
				continue
			}
			res.Violations[br.rule.Name]++
			if br.rule.Action == ActionDrop {
				keep = false
			}
		}
		if keep {
			b.Append(t.Row(i))
		}
	}
	res.Dropped = t.Len() - b.Len()
	return b.Table(), res
}

// boundRule is a rule with its column names resolved to indexes.
type boundRule struct {
	rule   ConsistencyRule
	col    int
	terms  []int
	target int
}

func bindRule(t *table.Table, r ConsistencyRule) (boundRule, bool) {
	br := boundRule{rule: r}
	switch r.Type {
	case RuleRange:
		j, ok := t.Index(r.Column)
		if !ok {
			return br, false
		}
		br.col = j
	case RuleSumEquals:
		for _, c := range r.Terms {
			j, ok := t.Index(c)
			if !ok {
				return br, false
			}
			br.terms = append(br.terms, j)
		}
		j, ok := t.Index(r.Target)
		if !ok {
			return br, false
		}
		br.target = j
	default:
		return br, false
	}
	return br, true
}

// holds reports whether row i satisfies the rule.
func (br boundRule) holds(t *table.Table, i int) bool {
	r := br.rule
	switch r.Type {
	case RuleRange:
		v, ok := t.At(i, br.col).Float()
		if !ok {
			return true
		}
		if r.Min != nil && (v < *r.Min || (r.MinExclusive && v == *r.Min)) {
			return false
		}
		if r.Max != nil && (v > *r.Max || (r.MaxExclusive && v == *r.Max)) {
			return false
		}
		return true
	case RuleSumEquals:
		sum := 0.0
		for _, j := range br.terms {
			v, ok := t.At(i, j).Float()
			if !ok {
				return true
			}
			sum += v
		}
		want, ok := t.At(i, br.target).Float()
		if !ok {
			return true
		}
		return math.Abs(sum-want) <= r.Tolerance+1e-9
	}
	return true
}
