package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nbaclean-cli/internal/profile"
	"github.com/KaramelBytes/nbaclean-cli/internal/report"
	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
	"github.com/KaramelBytes/nbaclean-cli/internal/table"
	"github.com/KaramelBytes/nbaclean-cli/internal/utils"
)

var (
	dsProfile    string
	dsColumns    []string
	dsCorrelate  []string
	dsMultiplier float64
	dsDelimiter  string
	dsSheet      string
	dsJSON       bool
	dsMarkdown   bool
	dsOutputPath string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Descriptive statistics and correlations for numeric columns",
	Long: `Compute count, mean, median, mode, standard deviation, quartiles and IQR
outliers per numeric column, plus a Pearson correlation matrix. Column lists come
from --columns/--correlate, else from the matching profile, else every numeric
column. The file is read as is; run 'clean' first for cleaned statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := loadOptions(dsDelimiter, dsSheet)
		if err != nil {
			return err
		}
		t, err := table.Load(path, opt)
		if err != nil {
			return err
		}

		cols, corr := dsColumns, dsCorrelate
		reg, err := registry()
		if err != nil {
			return err
		}
		if p, err := resolveProfile(reg, dsProfile, path); err == nil {
			if len(cols) == 0 && len(p.Describe) > 0 {
				cols = profile.Present(p.Describe, func(c string) bool { return len(t.Floats(c)) > 0 })
			}
			if len(corr) == 0 {
				corr = profile.Present(p.Correlate, t.Has)
			}
		} else if dsProfile != "" {
			return err
		}
		if len(cols) == 0 {
			cols = nil
		}
		if len(corr) == 0 {
			corr = stats.NumericColumns(t)
		}

		mult := dsMultiplier
		if mult <= 0 && cfg != nil {
			mult = cfg.OutlierMultiplier
		}
		sum, err := stats.Describe(t, cols, mult)
		if err != nil {
			return err
		}
		var m *stats.Matrix
		if len(corr) >= 2 {
			mm, err := stats.Correlate(t, corr)
			if err != nil {
				return err
			}
			m = &mm
		}

		var text string
		switch {
		case dsJSON:
			b, err := utils.PrettyJSON(struct {
				Summary     stats.Summary `json:"summary"`
				Correlation *stats.Matrix `json:"correlation,omitempty"`
			}{sum, m})
			if err != nil {
				return err
			}
			text = string(b) + "\n"
		case dsMarkdown || dsOutputPath != "":
			text = report.SummaryMarkdown(sum)
			if m != nil {
				text += "\n" + report.MatrixMarkdown(*m)
			}
		}

		if dsOutputPath != "" {
			if err := utils.SafeWriteFile(dsOutputPath, []byte(text)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote statistics to %s\n", dsOutputPath)
			return nil
		}
		if text != "" {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		report.WriteSummary(cmd.OutOrStdout(), sum)
		if m != nil {
			report.WriteMatrix(cmd.OutOrStdout(), *m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&dsProfile, "profile", "p", "", "take column lists from this profile")
	describeCmd.Flags().StringSliceVarP(&dsColumns, "columns", "c", nil, "columns to describe (comma-separated)")
	describeCmd.Flags().StringSliceVar(&dsCorrelate, "correlate", nil, "columns for the correlation matrix (comma-separated)")
	describeCmd.Flags().Float64Var(&dsMultiplier, "multiplier", 0, "IQR multiplier for outlier counts (default from config)")
	describeCmd.Flags().StringVar(&dsDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	describeCmd.Flags().StringVar(&dsSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	describeCmd.Flags().BoolVar(&dsJSON, "json", false, "print JSON")
	describeCmd.Flags().BoolVar(&dsMarkdown, "markdown", false, "print Markdown")
	describeCmd.Flags().StringVarP(&dsOutputPath, "output", "o", "", "write the result to a file instead of stdout (Markdown unless --json)")
}
