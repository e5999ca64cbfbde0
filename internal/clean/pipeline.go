// Package clean implements the cleaning-and-validation pipeline: column
// classification, missing-value resolution, deduplication, type coercion,
// IQR outlier filtering and cross-field consistency checks, run in a fixed
// order over one table and summarized in a Report.
package clean

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// Stage names, in run order.
const (
	StageConfig    = "config"
	StageSelect    = "select"
	StageCoerce    = "coerce"
	StageMissing   = "missing"
	StageDedupe    = "dedupe"
	StageOutliers  = "outliers"
	StageValidate  = "validate"
	StageNormalize = "normalize"
	StageDerive    = "derive"
)

// HighOutlierPercent is the removal share above which the outlier stage
// adds a warning to the report.
const HighOutlierPercent = 10.0

// Pipeline runs one dataset configuration. It holds no per-run state and
// can be shared between goroutines cleaning different tables.
type Pipeline struct {
	cfg       Config
	coerce    map[string]CoerceRule
	normalize map[string]CoerceRule
	log       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger stage progress is written to.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// New validates cfg and builds a pipeline for it.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, coerce: make(map[string]CoerceRule), log: slog.Default()}
	for _, cs := range cfg.Columns {
		if cs.Coerce != nil {
			p.coerce[cs.Name] = *cs.Coerce
		}
	}
	p.normalize = textRules(p.coerce)
	if p.cfg.Outliers.Multiplier == 0 {
		p.cfg.Outliers.Multiplier = stats.DefaultMultiplier
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Config returns the configuration the pipeline runs.
func (p *Pipeline) Config() Config { return p.cfg }

// Run cleans t and returns the cleaned table with its report. t is not
// modified. On a configuration or empty-distribution error the remaining
// stages are skipped, the table is nil and the report covers the stages
// that ran.
func (p *Pipeline) Run(t *table.Table) (*table.Table, Report, error) {
	if t == nil {
		t = table.New(nil)
	}
	rc := newRecorder(p.cfg.Dataset, t.Len())
	log := p.log.With("dataset", p.cfg.Dataset, "run_id", rc.r.RunID)
	log.Debug("pipeline start", "rows", t.Len(), "columns", t.Width())

	if err := p.checkColumns(t); err != nil {
		log.Error("pipeline aborted", "stage", StageConfig, "error", err)
		return nil, rc.freeze(err), err
	}

	cur := t
	step := func(name string, next *table.Table) {
		rc.stage(name, cur.Len(), next.Len())
		log.Debug("stage done", "stage", name, "rows_in", cur.Len(), "rows_out", next.Len())
		cur = next
	}

	next, skipped := Select(cur, p.selection(cur))
	for _, c := range skipped {
		rc.warn(fmt.Sprintf("select: column %q not present", c))
	}
	step(StageSelect, next)

	next, failed := Coerce(cur, p.coerce)
	addCounts(rc.r.Coerced, failed)
	for c, n := range failed {
		log.Debug("unparseable cells set missing", "column", c, "cells", n)
	}
	step(StageCoerce, next)

	next, mres, err := ResolveMissing(cur, p.cfg.Columns, p.cfg.Defaults)
	if err != nil {
		log.Error("pipeline aborted", "stage", StageMissing, "error", err)
		return nil, rc.freeze(err), err
	}
	addCounts(rc.r.Filled, mres.Filled)
	step(StageMissing, next)

	next, dups := Dedupe(cur)
	rc.r.Duplicates = dups
	step(StageDedupe, next)

	next, ores := FilterOutliers(cur, p.cfg.Outliers)
	addCounts(rc.r.Outliers, ores.Counts)
	for c, b := range ores.Bounds {
		rc.r.OutlierBounds[c] = b
	}
	rc.r.OutlierRows = ores.Removed
	rc.r.OutlierPercent = ores.Percent
	for _, c := range ores.Skipped {
		rc.warn(fmt.Sprintf("outliers: column %q is absent or not numeric", c))
	}
	if ores.Percent > HighOutlierPercent {
		msg := fmt.Sprintf("outliers: %d of %d rows (%.1f%%) removed", ores.Removed, cur.Len(), ores.Percent)
		rc.warn(msg)
		log.Warn(msg)
	}
	step(StageOutliers, next)

	next, vres := Validate(cur, p.cfg.Rules)
	addCounts(rc.r.Violations, vres.Violations)
	for _, name := range vres.NotApplicable {
		rc.warn(fmt.Sprintf("rule %q not applicable: referenced column not present", name))
	}
	for _, r := range p.cfg.Rules {
		if n := vres.Violations[r.Name]; n > 0 && r.Action == ActionWarn {
			msg := fmt.Sprintf("rule %q: %d rows violate (kept)", r.Name, n)
			rc.warn(msg)
			log.Warn(msg)
		}
	}
	step(StageValidate, next)

	next, _ = Coerce(cur, p.normalize)
	step(StageNormalize, next)

	next, skipped = Derive(cur, p.cfg.Derived)
	for _, name := range skipped {
		rc.warn(fmt.Sprintf("derive %q: input column not present", name))
	}
	step(StageDerive, next)

	rep := rc.freeze(nil)
	log.Info("pipeline done", "rows_in", rep.RowsIn, "rows_out", rep.RowsOut, "warnings", len(rep.Warnings))
	return cur, rep, nil
}

// checkColumns rejects inputs missing a required declared column.
func (p *Pipeline) checkColumns(t *table.Table) error {
	if t.Width() == 0 && t.Len() == 0 {
		return nil
	}
	for _, cs := range p.cfg.Columns {
		if !cs.Optional && !t.Has(cs.Name) {
			return configErr(StageConfig, cs.Name, "required column is not present in the input")
		}
	}
	return nil
}

// selection extends the configured selection so derived columns already in
// the input are dropped up front and recomputed at the end.
func (p *Pipeline) selection(t *table.Table) Selection {
	sel := Selection{Keep: p.cfg.Select.Keep, Drop: append([]string(nil), p.cfg.Select.Drop...)}
	for _, d := range p.cfg.Derived {
		if t.Has(d.Name) {
			sel.Drop = append(sel.Drop, d.Name)
		}
	}
	return sel
}
