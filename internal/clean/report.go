package clean

import (
	"sort"

	"github.com/google/uuid"

	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
)

// StageDelta is the row count change of one pipeline stage.
type StageDelta struct {
	Stage   string `json:"stage"`
	RowsIn  int    `json:"rows_in"`
	RowsOut int    `json:"rows_out"`
}

// Removed is RowsIn minus RowsOut.
func (d StageDelta) Removed() int { return d.RowsIn - d.RowsOut }

// Report is the audit trail of one pipeline run. It is produced once per
// run and not modified afterwards; a run that aborts returns the report up
// to the failing stage with Aborted set.
type Report struct {
	RunID          string                  `json:"run_id"`
	Dataset        string                  `json:"dataset"`
	RowsIn         int                     `json:"rows_in"`
	RowsOut        int                     `json:"rows_out"`
	Stages         []StageDelta            `json:"stage_deltas"`
	Outliers       map[string]int          `json:"outlier_counts"`
	OutlierBounds  map[string]stats.Bounds `json:"outlier_bounds,omitempty"`
	OutlierRows    int                     `json:"outlier_rows"`
	OutlierPercent float64                 `json:"outlier_pct"`
	Violations     map[string]int          `json:"consistency_violations"`
	Filled         map[string]int          `json:"filled"`
	Coerced        map[string]int          `json:"coerced"`
	Duplicates     int                     `json:"duplicates"`
	Warnings       []string                `json:"warnings"`
	Aborted        bool                    `json:"aborted,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

// Stage returns the delta recorded for a stage.
func (r Report) Stage(name string) (StageDelta, bool) {
	for _, d := range r.Stages {
		if d.Stage == name {
			return d, true
		}
	}
	return StageDelta{}, false
}

// Removed is the total number of rows the run removed.
func (r Report) Removed() int { return r.RowsIn - r.RowsOut }

// Changed reports whether any stage removed rows or rewrote cells.
func (r Report) Changed() bool {
	if r.Removed() != 0 {
		return true
	}
	for _, n := range r.Filled {
		if n > 0 {
			return true
		}
	}
	for _, n := range r.Coerced {
		if n > 0 {
			return true
		}
	}
	return false
}

// ViolationNames lists the rules with violations, sorted.
func (r Report) ViolationNames() []string { return sortedKeys(r.Violations) }

// OutlierColumns lists the columns with outlier counts, sorted.
func (r Report) OutlierColumns() []string { return sortedKeys(r.Outliers) }

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// recorder accumulates a Report while the pipeline runs.
type recorder struct {
	r Report
}

func newRecorder(dataset string, rowsIn int) *recorder {
	return &recorder{r: Report{
		RunID:         uuid.NewString(),
		Dataset:       dataset,
		RowsIn:        rowsIn,
		RowsOut:       rowsIn,
		Outliers:      make(map[string]int),
		OutlierBounds: make(map[string]stats.Bounds),
		Violations:    make(map[string]int),
		Filled:        make(map[string]int),
		Coerced:       make(map[string]int),
		Warnings:      []string{},
	}}
}

func (rc *recorder) stage(name string, in, out int) {
	rc.r.Stages = append(rc.r.Stages, StageDelta{Stage: name, RowsIn: in, RowsOut: out})
	rc.r.RowsOut = out
}

func (rc *recorder) warn(msg string) { rc.r.Warnings = append(rc.r.Warnings, msg) }

func addCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}

// freeze hands out the report. The recorder must not be used afterwards.
func (rc *recorder) freeze(err error) Report {
	r := rc.r
	if err != nil {
		r.Aborted = true
		r.Error = err.Error()
	}
	rc.r = Report{}
	return r
}
