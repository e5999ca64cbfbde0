package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
	"github.com/KaramelBytes/nbaclean-cli/internal/manifest"
	"github.com/KaramelBytes/nbaclean-cli/internal/report"
	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
	"github.com/KaramelBytes/nbaclean-cli/internal/utils"
	"github.com/KaramelBytes/nbaclean-cli/internal/workflow"
)

var (
	clProfile   string
	clOutputDir string
	clDelimiter string
	clSheet     string
	clJSON      bool
	clMarkdown  bool
	clDescribe  bool
	clDryRun    bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean one raw export with its dataset profile",
	Long: `Clean one CSV/TSV/XLSX export. The profile is chosen with --profile or
matched from the file name. The cleaned CSV and a JSON report are written to the
output directory and the run is recorded in its manifest.json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		reg, err := registry()
		if err != nil {
			return err
		}
		p, err := resolveProfile(reg, clProfile, path)
		if err != nil {
			return err
		}
		opt, err := loadOptions(clDelimiter, clSheet)
		if err != nil {
			return err
		}
		job := workflow.Job{
			Input:     path,
			Profile:   withMultiplier(p),
			OutputDir: outputDir(clOutputDir),
			Load:      opt,
			Delimiter: opt.Delimiter,
			Describe:  clDescribe,
			DryRun:    clDryRun,
		}
		res, runErr := workflow.Run(cmd.Context(), job, logger)

		if !clDryRun && manifestEnabled() && res.Report.RunID != "" {
			if err := recordRuns(job.OutputDir, []workflow.Result{res}); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: manifest not updated: %v\n", err)
			}
		}
		if err := printResult(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}
		if !clJSON && !clDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleaned %s -> %s (%d -> %d rows)\n", path, res.Output, res.Report.RowsIn, res.Report.RowsOut)
			if !res.Report.Changed() {
				fmt.Fprintln(cmd.OutOrStdout(), "  no rows removed and no cells rewritten")
			}
		}
		return nil
	},
}

// printResult writes the report in the format the flags select.
func printResult(w io.Writer, res workflow.Result) error {
	if res.Report.RunID == "" {
		return nil
	}
	switch {
	case clJSON:
		b, err := utils.PrettyJSON(struct {
			Report      clean.Report   `json:"report"`
			Summary     *stats.Summary `json:"summary,omitempty"`
			Correlation *stats.Matrix  `json:"correlation,omitempty"`
		}{res.Report, res.Summary, res.Matrix})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	case clMarkdown:
		fmt.Fprintln(w, report.Markdown(res.Report))
		if res.Summary != nil {
			fmt.Fprintln(w, report.SummaryMarkdown(*res.Summary))
		}
		if res.Matrix != nil {
			fmt.Fprintln(w, report.MatrixMarkdown(*res.Matrix))
		}
	default:
		report.WriteStages(w, res.Report)
		for _, msg := range res.Report.Warnings {
			fmt.Fprintf(w, "⚠ %s\n", msg)
		}
		if res.Summary != nil {
			report.WriteSummary(w, *res.Summary)
		}
		if res.Matrix != nil {
			report.WriteMatrix(w, *res.Matrix)
		}
	}
	return nil
}

// recordRuns appends results that produced a report to dir/manifest.json.
func recordRuns(dir string, results []workflow.Result) error {
	m, err := manifest.Open(dir)
	if err != nil {
		return err
	}
	n := 0
	for _, r := range results {
		if r.Report.RunID == "" {
			continue
		}
		m.Record(r.Input, r.Output, r.ReportPath, r.Profile, r.Report)
		n++
	}
	if n == 0 {
		return nil
	}
	return m.Save()
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&clProfile, "profile", "p", "", "dataset profile (default: matched from the file name)")
	cleanCmd.Flags().StringVarP(&clOutputDir, "output-dir", "o", "", "directory for cleaned files (default from config)")
	cleanCmd.Flags().StringVar(&clDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	cleanCmd.Flags().StringVar(&clSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	cleanCmd.Flags().BoolVar(&clJSON, "json", false, "print the report as JSON")
	cleanCmd.Flags().BoolVar(&clMarkdown, "markdown", false, "print the report as Markdown")
	cleanCmd.Flags().BoolVar(&clDescribe, "describe", false, "also compute statistics and correlations on the cleaned data")
	cleanCmd.Flags().BoolVar(&clDryRun, "dry-run", false, "clean and report without writing files")
}
