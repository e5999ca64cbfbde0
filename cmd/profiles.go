package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and inspect dataset profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and user profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Profile", "Input", "Origin", "Description"})
		for _, p := range reg.List() {
			t.AppendRow(table.Row{p.Name, p.Input, p.Origin, p.Description})
		}
		t.Render()
		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a profile as YAML (copy it into profiles_dir to customize)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		p, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		b, err := p.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# origin: %s\n%s", p.Origin, strings.TrimLeft(string(b), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
}
