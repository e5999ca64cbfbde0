package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nbaclean-cli/internal/report"
	"github.com/KaramelBytes/nbaclean-cli/internal/workflow"
)

var (
	cbProfile   string
	cbOutputDir string
	cbDelimiter string
	cbWorkers   int
	cbDescribe  bool
	cbDryRun    bool
	cbQuiet     bool
)

var cleanBatchCmd = &cobra.Command{
	Use:   "clean-batch [files...]",
	Short: "Clean many exports in parallel (default: every file in input_dir)",
	Long: `Clean every matched export with its profile. Arguments may be globs. Without
arguments all .csv, .tsv and .xlsx files in the configured input_dir are cleaned.
Files that match no profile are skipped unless --profile is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		patterns := args
		if len(patterns) == 0 {
			for _, ext := range []string{"*.csv", "*.tsv", "*.xlsx"} {
				patterns = append(patterns, filepath.Join(cfg.InputDir, ext))
			}
		}
		files := expandInputs(patterns)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		reg, err := registry()
		if err != nil {
			return err
		}
		opt, err := loadOptions(cbDelimiter, "")
		if err != nil {
			return err
		}
		dir := outputDir(cbOutputDir)
		var jobs []workflow.Job
		for _, path := range files {
			p, err := resolveProfile(reg, cbProfile, path)
			if err != nil {
				if cbProfile != "" {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipping %s: no matching profile\n", filepath.Base(path))
				continue
			}
			jobs = append(jobs, workflow.Job{
				Input:     path,
				Profile:   withMultiplier(p),
				OutputDir: dir,
				Load:      opt,
				Delimiter: opt.Delimiter,
				Describe:  cbDescribe,
				DryRun:    cbDryRun,
			})
		}
		if len(jobs) == 0 {
			return fmt.Errorf("no input file matched a profile")
		}

		workers := cbWorkers
		if workers <= 0 && cfg != nil {
			workers = cfg.Workers
		}
		results, batchErr := workflow.RunBatch(cmd.Context(), jobs, workers, logger)

		if !cbDryRun && manifestEnabled() {
			if err := recordRuns(dir, results); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: manifest not updated: %v\n", err)
			}
		}
		total := len(results)
		for i, r := range results {
			if cbQuiet && r.Err == nil {
				continue
			}
			name := filepath.Base(r.Input)
			if r.Err != nil {
				fmt.Fprintf(out, "[%d/%d] ✗ %s (%s): %v\n", i+1, total, name, r.Profile, r.Err)
				continue
			}
			fmt.Fprintf(out, "[%d/%d] ✓ %s (%s): %d -> %d rows", i+1, total, name, r.Profile, r.Report.RowsIn, r.Report.RowsOut)
			if n := len(r.Report.Warnings); n > 0 {
				fmt.Fprintf(out, ", %d warnings", n)
			}
			fmt.Fprintln(out)
			if r.Summary != nil && !cbQuiet {
				report.WriteSummary(out, *r.Summary)
			}
			if r.Matrix != nil && !cbQuiet {
				report.WriteMatrix(out, *r.Matrix)
			}
		}
		if batchErr != nil {
			return batchErr
		}
		if n := workflow.Failed(results); n > 0 {
			return fmt.Errorf("%d of %d files failed", n, total)
		}
		if !cbDryRun {
			fmt.Fprintf(out, "✓ Cleaned %d files into %s\n", total, dir)
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, de-duplicated and sorted.
func expandInputs(patterns []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range patterns {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if strings.Contains(filepath.Base(m), "_CLEANED") {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(cleanBatchCmd)
	cleanBatchCmd.Flags().StringVarP(&cbProfile, "profile", "p", "", "apply one profile to every file instead of matching by name")
	cleanBatchCmd.Flags().StringVarP(&cbOutputDir, "output-dir", "o", "", "directory for cleaned files (default from config)")
	cleanBatchCmd.Flags().StringVar(&cbDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	cleanBatchCmd.Flags().IntVarP(&cbWorkers, "workers", "w", 0, "files cleaned in parallel (default from config)")
	cleanBatchCmd.Flags().BoolVar(&cbDescribe, "describe", false, "also compute statistics and correlations per file")
	cleanBatchCmd.Flags().BoolVar(&cbDryRun, "dry-run", false, "clean and report without writing files")
	cleanBatchCmd.Flags().BoolVarP(&cbQuiet, "quiet", "q", false, "only print failures")
}
