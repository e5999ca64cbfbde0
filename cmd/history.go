package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nbaclean-cli/internal/manifest"
)

var (
	hsOutputDir string
	hsInput     string
	hsLast      bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List cleaning runs recorded in an output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		m, err := manifest.Open(outputDir(hsOutputDir))
		if err != nil {
			return err
		}
		entries := m.List()
		if hsLast {
			if hsInput == "" {
				return fmt.Errorf("--last requires --input")
			}
			entries = nil
			if e, ok := m.Latest(hsInput); ok {
				entries = append(entries, e)
			}
		}
		found := false
		for _, e := range entries {
			if hsInput != "" && filepath.Base(e.Input) != filepath.Base(hsInput) {
				continue
			}
			found = true
			status := "✓"
			if e.Aborted {
				status = "✗"
			}
			fmt.Fprintf(out, "- %s %s %s [%s] %d -> %d rows", status, e.CleanedAt.Format("2006-01-02 15:04:05"), filepath.Base(e.Input), e.Profile, e.RowsIn, e.RowsOut)
			if e.Aborted {
				fmt.Fprintf(out, " (%s)", e.Error)
			}
			fmt.Fprintln(out)
		}
		if !found {
			fmt.Fprintln(out, "(no runs)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&hsOutputDir, "output-dir", "o", "", "output directory holding manifest.json (default from config)")
	historyCmd.Flags().StringVar(&hsInput, "input", "", "only runs of this input file")
	historyCmd.Flags().BoolVar(&hsLast, "last", false, "only the most recent run of --input")
}
