package clean

import (
	"fmt"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// Kind is the semantic class of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// MissingAction selects how missing cells of a column are resolved.
type MissingAction string

const (
	MissingNone     MissingAction = "none"
	MissingDrop     MissingAction = "drop"
	MissingConstant MissingAction = "constant"
	MissingMedian   MissingAction = "median"
	MissingMode     MissingAction = "mode"
)

// MissingPolicy is a MissingAction plus the literal used by MissingConstant.
type MissingPolicy struct {
	Action MissingAction `yaml:"action" json:"action" validate:"omitempty,oneof=none drop constant median mode"`
	Value  string        `yaml:"value,omitempty" json:"value,omitempty"`
}

// Drop, Constant, Median and Mode build the corresponding policies.
func Drop() MissingPolicy             { return MissingPolicy{Action: MissingDrop} }
func Constant(v string) MissingPolicy { return MissingPolicy{Action: MissingConstant, Value: v} }
func Median() MissingPolicy           { return MissingPolicy{Action: MissingMedian} }
func Mode() MissingPolicy             { return MissingPolicy{Action: MissingMode} }

func (p MissingPolicy) String() string {
	switch p.Action {
	case MissingConstant:
		return fmt.Sprintf("constant(%q)", p.Value)
	case "":
		return string(MissingNone)
	}
	return string(p.Action)
}

// constantValue converts the literal for a column of the given kind. A
// numeric column only accepts a literal that parses as a finite number.
func (p MissingPolicy) constantValue(k Kind) (table.Value, bool) {
	if k != KindNumeric {
		return table.Str(p.Value), true
	}
	f, ok := parseNumber(p.Value)
	if !ok {
		return table.Null(), false
	}
	return table.Num(f), true
}

// CoerceTarget is the representation a column is forced into.
type CoerceTarget string

const (
	CoerceNumeric CoerceTarget = "numeric"
	CoerceUpper   CoerceTarget = "upper"
	CoerceTitle   CoerceTarget = "title"
	CoerceLower   CoerceTarget = "lower"
	CoerceStrip   CoerceTarget = "strip"
)

// CoerceRule converts a column to Target. Fold additionally transliterates
// text to ASCII ("Jokić" becomes "Jokic").
type CoerceRule struct {
	Target CoerceTarget `yaml:"to" json:"to" validate:"required,oneof=numeric upper title lower strip"`
	Fold   bool         `yaml:"fold,omitempty" json:"fold,omitempty"`
}

func (r CoerceRule) textual() bool { return r.Target != CoerceNumeric }

// ColumnSpec declares one column of a dataset. A spec column must be present
// in the input unless Optional is set.
type ColumnSpec struct {
	Name     string        `yaml:"name" json:"name" validate:"required"`
	Kind     Kind          `yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,oneof=numeric categorical"`
	Missing  MissingPolicy `yaml:"missing,omitempty" json:"missing,omitempty"`
	Coerce   *CoerceRule   `yaml:"coerce,omitempty" json:"coerce,omitempty"`
	Optional bool          `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Defaults are the missing-value policies for columns without their own.
type Defaults struct {
	Numeric     MissingPolicy `yaml:"numeric,omitempty" json:"numeric,omitempty"`
	Categorical MissingPolicy `yaml:"categorical,omitempty" json:"categorical,omitempty"`
}

// Selection keeps and drops columns before any other stage runs. Keep, when
// set, lists the columns to retain in their input order; names absent from
// the input are ignored.
type Selection struct {
	Keep []string `yaml:"keep,omitempty" json:"keep,omitempty"`
	Drop []string `yaml:"drop,omitempty" json:"drop,omitempty"`
}

// OutlierPolicy governs the IQR filter. Empty Columns means every numeric
// column.
type OutlierPolicy struct {
	Enabled    bool     `yaml:"enabled" json:"enabled"`
	Multiplier float64  `yaml:"multiplier,omitempty" json:"multiplier,omitempty" validate:"gte=0"`
	Columns    []string `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// RuleType names the predicate of a ConsistencyRule.
type RuleType string

const (
	RuleRange     RuleType = "range"
	RuleSumEquals RuleType = "sum_equals"
)

// RuleAction is what happens to rows failing a rule.
type RuleAction string

const (
	ActionDrop RuleAction = "drop"
	ActionWarn RuleAction = "warn"
)

// ConsistencyRule is a declarative cross-field check.
//
//	range:      Min <= Column <= Max (each bound optional, exclusive on request)
//	sum_equals: sum(Terms) == Target within Tolerance
type ConsistencyRule struct {
	Name   string     `yaml:"name" json:"name" validate:"required"`
	Type   RuleType   `yaml:"type" json:"type" validate:"required,oneof=range sum_equals"`
	Action RuleAction `yaml:"action" json:"action" validate:"required,oneof=drop warn"`

	Column       string   `yaml:"column,omitempty" json:"column,omitempty"`
	Min          *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max          *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	MinExclusive bool     `yaml:"min_exclusive,omitempty" json:"min_exclusive,omitempty"`
	MaxExclusive bool     `yaml:"max_exclusive,omitempty" json:"max_exclusive,omitempty"`

	Terms     []string `yaml:"terms,omitempty" json:"terms,omitempty"`
	Target    string   `yaml:"target,omitempty" json:"target,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty" validate:"gte=0"`
}

// DeriveType names the formula of a DerivedColumn.
type DeriveType string

const (
	DeriveRatio      DeriveType = "ratio"
	DeriveFeetInches DeriveType = "feet_inches"
)

// DerivedColumn appends (or rewrites) a computed column after cleaning.
type DerivedColumn struct {
	Name        string     `yaml:"name" json:"name" validate:"required"`
	Type        DeriveType `yaml:"type" json:"type" validate:"required,oneof=ratio feet_inches"`
	Numerator   string     `yaml:"numerator,omitempty" json:"numerator,omitempty"`
	Denominator string     `yaml:"denominator,omitempty" json:"denominator,omitempty"`
	Source      string     `yaml:"source,omitempty" json:"source,omitempty"`
	Digits      int        `yaml:"digits,omitempty" json:"digits,omitempty" validate:"gte=0,lte=12"`
}

// Config is the full cleaning configuration of one dataset kind.
type Config struct {
	Dataset  string            `yaml:"dataset" json:"dataset"`
	Select   Selection         `yaml:"select,omitempty" json:"select,omitempty"`
	Columns  []ColumnSpec      `yaml:"columns,omitempty" json:"columns,omitempty" validate:"dive"`
	Defaults Defaults          `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Outliers OutlierPolicy     `yaml:"outliers,omitempty" json:"outliers,omitempty"`
	Rules    []ConsistencyRule `yaml:"rules,omitempty" json:"rules,omitempty" validate:"dive"`
	Derived  []DerivedColumn   `yaml:"derived,omitempty" json:"derived,omitempty" validate:"dive"`
}

// Check verifies the parts of a Config that struct tags cannot express.
func (c Config) Check() error {
	seen := make(map[string]bool, len(c.Columns))
	for _, cs := range c.Columns {
		if cs.Name == "" {
			return configErr("config", "", "column spec without a name")
		}
		if seen[cs.Name] {
			return configErr("config", cs.Name, "declared twice")
		}
		seen[cs.Name] = true
		if err := checkPolicy(cs.Missing); err != nil {
			return &StageError{Stage: "config", Column: cs.Name, Err: err}
		}
		if cs.Kind == KindCategorical && cs.Missing.Action == MissingMedian {
			return configErr("config", cs.Name, "median fill on a categorical column")
		}
		if cs.Kind == KindNumeric && cs.Missing.Action == MissingConstant {
			if _, ok := cs.Missing.constantValue(KindNumeric); !ok {
				return configErr("config", cs.Name, "constant %q is not a number", cs.Missing.Value)
			}
		}
		if cs.Coerce != nil {
			switch cs.Coerce.Target {
			case CoerceNumeric, CoerceUpper, CoerceTitle, CoerceLower, CoerceStrip:
			default:
				return configErr("config", cs.Name, "unknown coercion %q", cs.Coerce.Target)
			}
		}
	}
	if err := checkPolicy(c.Defaults.Numeric); err != nil {
		return &StageError{Stage: "config", Err: err}
	}
	if err := checkPolicy(c.Defaults.Categorical); err != nil {
		return &StageError{Stage: "config", Err: err}
	}
	if c.Defaults.Numeric.Action == MissingConstant {
		if _, ok := c.Defaults.Numeric.constantValue(KindNumeric); !ok {
			return configErr("config", "", "numeric default constant %q is not a number", c.Defaults.Numeric.Value)
		}
	}
	if c.Defaults.Categorical.Action == MissingMedian {
		return configErr("config", "", "median fill as the categorical default")
	}
	if c.Outliers.Multiplier < 0 {
		return configErr("config", "", "negative outlier multiplier %v", c.Outliers.Multiplier)
	}
	for _, r := range c.Rules {
		if err := r.check(); err != nil {
			return err
		}
	}
	for _, d := range c.Derived {
		if err := d.check(); err != nil {
			return err
		}
	}
	return nil
}

func checkPolicy(p MissingPolicy) error {
	switch p.Action {
	case "", MissingNone, MissingDrop, MissingConstant, MissingMedian, MissingMode:
		return nil
	}
	return fmt.Errorf("%w: unknown missing-value action %q", ErrConfig, p.Action)
}

func (r ConsistencyRule) check() error {
	if r.Action != ActionDrop && r.Action != ActionWarn {
		return configErr("config", "", "rule %q: unknown action %q", r.Name, r.Action)
	}
	switch r.Type {
	case RuleRange:
		if r.Column == "" || (r.Min == nil && r.Max == nil) {
			return configErr("config", "", "rule %q: range needs a column and a bound", r.Name)
		}
	case RuleSumEquals:
		if len(r.Terms) == 0 || r.Target == "" {
			return configErr("config", "", "rule %q: sum_equals needs terms and a target", r.Name)
		}
	default:
		return configErr("config", "", "rule %q: unknown type %q", r.Name, r.Type)
	}
	return nil
}

func (d DerivedColumn) check() error {
	switch d.Type {
	case DeriveRatio:
		if d.Numerator == "" || d.Denominator == "" {
			return configErr("config", d.Name, "ratio needs numerator and denominator")
		}
	case DeriveFeetInches:
		if d.Source == "" {
			return configErr("config", d.Name, "feet_inches needs a source column")
		}
	default:
		return configErr("config", d.Name, "unknown derivation %q", d.Type)
	}
	return nil
}
