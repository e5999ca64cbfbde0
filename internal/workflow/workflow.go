// Package workflow runs a cleaning profile over an input file end to end:
// load, clean, write the cleaned CSV and its JSON report, and optionally
// describe the result.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
	"github.com/KaramelBytes/nbaclean-cli/internal/logging"
	"github.com/KaramelBytes/nbaclean-cli/internal/profile"
	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
	"github.com/KaramelBytes/nbaclean-cli/internal/table"
	"github.com/KaramelBytes/nbaclean-cli/internal/utils"
)

// Job is one input file cleaned with one profile.
type Job struct {
	Input     string
	Profile   profile.Profile
	OutputDir string
	Load      table.LoadOptions
	// Delimiter of the written CSV; 0 means comma.
	Delimiter rune
	// Describe computes statistics and correlations on the cleaned table.
	Describe bool
	// DryRun cleans without writing anything.
	DryRun bool
}

// Result is the outcome of one Job. Err is set when the job failed; Report
// is still filled when the pipeline ran far enough to produce one.
type Result struct {
	Input      string
	Profile    string
	Output     string
	ReportPath string
	Report     clean.Report
	Summary    *stats.Summary
	Matrix     *stats.Matrix
	Err        error
}

// OutputPath is where a job writes its cleaned CSV.
func (j Job) OutputPath() string {
	return filepath.Join(j.OutputDir, utils.CleanedName(j.Input))
}

// ReportPath is where a job writes its JSON report.
func (j Job) ReportPath() string {
	out := j.OutputPath()
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".report.json"
}

// Run executes a single job. The returned error equals Result.Err.
func Run(ctx context.Context, job Job, log *slog.Logger) (Result, error) {
	res := Result{Input: job.Input, Profile: job.Profile.Name}
	if log == nil {
		log = slog.Default()
	}
	fail := func(err error) (Result, error) {
		res.Err = err
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	t, err := table.Load(job.Input, job.Load)
	if err != nil {
		return fail(fmt.Errorf("load %s: %w", job.Input, err))
	}
	p, err := clean.New(job.Profile.Clean, clean.WithLogger(logging.Component(log, "pipeline")))
	if err != nil {
		return fail(fmt.Errorf("profile %s: %w", job.Profile.Name, err))
	}
	cleaned, rep, err := p.Run(t)
	res.Report = rep
	if err != nil {
		return fail(fmt.Errorf("clean %s: %w", job.Input, err))
	}

	if job.Describe {
		if err := describe(&res, cleaned, job.Profile, p.Config().Outliers.Multiplier); err != nil {
			return fail(fmt.Errorf("describe %s: %w", job.Input, err))
		}
	}
	if job.DryRun {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	res.Output = job.OutputPath()
	if err := table.WriteCSV(res.Output, cleaned, job.Delimiter); err != nil {
		return fail(fmt.Errorf("write %s: %w", res.Output, err))
	}
	data, err := utils.PrettyJSON(rep)
	if err != nil {
		return fail(err)
	}
	res.ReportPath = job.ReportPath()
	if err := utils.SafeWriteFile(res.ReportPath, data); err != nil {
		return fail(fmt.Errorf("write report: %w", err))
	}
	log.Info("cleaned", "input", job.Input, "output", res.Output, "rows_in", rep.RowsIn, "rows_out", rep.RowsOut)
	return res, nil
}

// describe fills Summary and Matrix from the profile's column lists. Listed
// columns that are absent or hold no numbers are skipped; an empty describe
// list means every numeric column.
func describe(res *Result, t *table.Table, p profile.Profile, multiplier float64) error {
	cols := profile.Present(p.Describe, func(c string) bool { return len(t.Floats(c)) > 0 })
	if len(p.Describe) == 0 {
		cols = nil
	} else if cols == nil {
		cols = []string{}
	}
	sum, err := stats.Describe(t, cols, multiplier)
	if err != nil {
		return err
	}
	res.Summary = &sum

	corr := profile.Present(p.Correlate, t.Has)
	if len(corr) >= 2 {
		m, err := stats.Correlate(t, corr)
		if err != nil {
			return err
		}
		res.Matrix = &m
	}
	return nil
}

// RunBatch runs jobs with at most workers in flight. Results are returned in
// job order. A failing job does not stop the others; it only sets its
// Result.Err. The returned error is non-nil only when ctx ends first.
func RunBatch(ctx context.Context, jobs []Job, workers int, log *slog.Logger) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Input: job.Input, Profile: job.Profile.Name, Err: err}
				return err
			}
			results[i], _ = Run(gctx, job, log)
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

// Failed counts the results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
