// Package report renders cleaning reports, column statistics and
// correlation matrices as markdown for files and as aligned tables for the
// terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
)

// Markdown renders a cleaning report as a compact, sectioned summary.
func Markdown(r clean.Report) string {
	var b strings.Builder
	b.WriteString("[CLEANING REPORT]\n")
	b.WriteString(fmt.Sprintf("- dataset: %s\n", safeName(r.Dataset)))
	b.WriteString(fmt.Sprintf("- run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("- rows: %d in, %d out (%d removed)\n", r.RowsIn, r.RowsOut, r.Removed()))
	if r.Aborted {
		b.WriteString(fmt.Sprintf("- aborted: %s\n", safeVal(r.Error)))
	}

	if len(r.Stages) > 0 {
		b.WriteString("\n[STAGES]\n")
		for _, d := range r.Stages {
			b.WriteString(fmt.Sprintf("- %s: %d -> %d", d.Stage, d.RowsIn, d.RowsOut))
			if n := d.Removed(); n > 0 {
				b.WriteString(fmt.Sprintf(" (-%d)", n))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Filled) > 0 || len(r.Coerced) > 0 || r.Duplicates > 0 {
		b.WriteString("\n[CHANGES]\n")
		for _, col := range keys(r.Coerced) {
			b.WriteString(fmt.Sprintf("- %s: %d cells failed coercion\n", safeName(col), r.Coerced[col]))
		}
		for _, col := range keys(r.Filled) {
			b.WriteString(fmt.Sprintf("- %s: %d cells filled\n", safeName(col), r.Filled[col]))
		}
		if r.Duplicates > 0 {
			b.WriteString(fmt.Sprintf("- duplicates removed: %d\n", r.Duplicates))
		}
	}

	if cols := r.OutlierColumns(); len(cols) > 0 {
		b.WriteString("\n[OUTLIERS]\n")
		for _, col := range cols {
			b.WriteString(fmt.Sprintf("- %s: %d", safeName(col), r.Outliers[col]))
			if bd, ok := r.OutlierBounds[col]; ok {
				b.WriteString(fmt.Sprintf(" outside [%s, %s]", num(bd.Lower), num(bd.Upper)))
			}
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("- rows removed: %d (%.1f%%)\n", r.OutlierRows, r.OutlierPercent))
	}

	if names := r.ViolationNames(); len(names) > 0 {
		b.WriteString("\n[CONSISTENCY]\n")
		for _, n := range names {
			b.WriteString(fmt.Sprintf("- %s: %d rows\n", n, r.Violations[n]))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", safeVal(w)))
		}
	}
	return b.String()
}

// SummaryMarkdown renders column statistics as a markdown table.
func SummaryMarkdown(s stats.Summary) string {
	var b strings.Builder
	b.WriteString("[COLUMN STATISTICS]\n\n")
	b.WriteString("| Column | Count | Mean | Median | Mode | Std | Min | Max | Q1 | Q3 | IQR | Outliers |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|---|\n")
	for _, col := range s.Columns {
		cs := s.Stats[col]
		b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %s | %d (%.1f%%) |\n",
			safeVal(safeName(col)), cs.Count, num(cs.Mean), num(cs.Median), num(cs.Mode), num(cs.Std),
			num(cs.Min), num(cs.Max), num(cs.Q1), num(cs.Q3), num(cs.IQR), cs.OutlierCount, cs.OutlierPercent))
	}
	return b.String()
}

// MatrixMarkdown renders a correlation matrix as a markdown table.
// Undefined coefficients print as n/a.
func MatrixMarkdown(m stats.Matrix) string {
	var b strings.Builder
	b.WriteString("[CORRELATION]\n\n")
	b.WriteString("| |")
	for _, c := range m.Columns {
		b.WriteString(" " + safeVal(c) + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(m.Columns)))
	b.WriteString("\n")
	for i, c := range m.Columns {
		b.WriteString("| " + safeVal(c) + " |")
		for j := range m.Columns {
			b.WriteString(" " + m.Values[i][j].String() + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteStages prints the per-stage row counts of a report.
func WriteStages(w io.Writer, r clean.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Stage", "Rows in", "Rows out", "Removed"})
	for _, d := range r.Stages {
		t.AppendRow(table.Row{d.Stage, d.RowsIn, d.RowsOut, d.Removed()})
	}
	t.AppendFooter(table.Row{"total", r.RowsIn, r.RowsOut, r.Removed()})
	t.Render()
}

// WriteSummary prints column statistics, one row per column.
func WriteSummary(w io.Writer, s stats.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Count", "Mean", "Median", "Mode", "Std", "Min", "Max", "Q1", "Q3", "Outliers"})
	for _, col := range s.Columns {
		cs := s.Stats[col]
		t.AppendRow(table.Row{
			col, cs.Count, num(cs.Mean), num(cs.Median), num(cs.Mode), num(cs.Std),
			num(cs.Min), num(cs.Max), num(cs.Q1), num(cs.Q3),
			fmt.Sprintf("%d (%.1f%%)", cs.OutlierCount, cs.OutlierPercent),
		})
	}
	t.Render()
}

// WriteMatrix prints a correlation matrix with column names on both axes.
func WriteMatrix(w io.Writer, m stats.Matrix) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	header := table.Row{""}
	for _, c := range m.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, c := range m.Columns {
		row := table.Row{c}
		for j := range m.Columns {
			row = append(row, m.Values[i][j].String())
		}
		t.AppendRow(row)
	}
	t.Render()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) }

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
