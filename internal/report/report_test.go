package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
)

func sampleReport() clean.Report {
	return clean.Report{
		RunID:   "run-1",
		Dataset: "advanced_team_stats",
		RowsIn:  8,
		RowsOut: 6,
		Stages: []clean.StageDelta{
			{Stage: clean.StageSelect, RowsIn: 8, RowsOut: 8},
			{Stage: clean.StageDedupe, RowsIn: 8, RowsOut: 7},
			{Stage: clean.StageOutliers, RowsIn: 7, RowsOut: 6},
		},
		Outliers:       map[string]int{"W": 1},
		OutlierBounds:  map[string]stats.Bounds{"W": {Lower: 20, Upper: 80}},
		OutlierRows:    1,
		OutlierPercent: 14.2857,
		Violations:     map[string]int{"w_plus_l_eq_gp": 2},
		Filled:         map[string]int{"W": 2, "L": 0},
		Coerced:        map[string]int{},
		Duplicates:     1,
		Warnings:       []string{"rule w_plus_l_eq_gp: 2 rows violate | kept"},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())
	assert.True(t, strings.HasPrefix(md, "[CLEANING REPORT]\n"))
	assert.Contains(t, md, "- rows: 8 in, 6 out (2 removed)")
	assert.Contains(t, md, "- dedupe: 8 -> 7 (-1)")
	assert.Contains(t, md, "- select: 8 -> 8\n")
	assert.Contains(t, md, "- W: 2 cells filled")
	assert.NotContains(t, md, "- L: 0 cells filled")
	assert.Contains(t, md, "- W: 1 outside [20.000, 80.000]")
	assert.Contains(t, md, "- rows removed: 1 (14.3%)")
	assert.Contains(t, md, "- w_plus_l_eq_gp: 2 rows")
	assert.Contains(t, md, "violate / kept")
	assert.NotContains(t, md, "aborted")
}

func TestMarkdownAborted(t *testing.T) {
	r := clean.Report{Dataset: "", Aborted: true, Error: "missing: W: empty\ndistribution"}
	md := Markdown(r)
	assert.Contains(t, md, "- dataset: (unnamed)")
	assert.Contains(t, md, "- aborted: missing: W: empty distribution")
	assert.NotContains(t, md, "[STAGES]")
}

func TestSummaryMarkdown(t *testing.T) {
	cs, err := stats.DescribeValues("weight", []float64{200, 210, 220, 200, 600}, 1.5)
	assert.NoError(t, err)
	md := SummaryMarkdown(stats.Summary{Columns: []string{"weight"}, Stats: map[string]stats.ColumnStats{"weight": cs}})
	assert.Contains(t, md, "| weight | 5 | 286.000 | 210.000 | 200.000 |")
	assert.Contains(t, md, "| 1 (20.0%) |")
}

func TestMatrixOutputs(t *testing.T) {
	m := stats.Matrix{
		Columns: []string{"W", "NET_RATING"},
		Values: [][]stats.Coefficient{
			{1, 0.9523},
			{0.9523, stats.Coefficient(math.NaN())},
		},
	}
	md := MatrixMarkdown(m)
	assert.Contains(t, md, "| W | 1.000 | 0.952 |")
	assert.Contains(t, md, "| NET_RATING | 0.952 | n/a |")

	var buf bytes.Buffer
	WriteMatrix(&buf, m)
	assert.Contains(t, buf.String(), "NET_RATING")
	assert.Contains(t, buf.String(), "n/a")
}

func TestWriteTables(t *testing.T) {
	var buf bytes.Buffer
	WriteStages(&buf, sampleReport())
	out := buf.String()
	assert.Contains(t, out, "outliers")
	assert.Contains(t, strings.ToLower(out), "total")

	buf.Reset()
	cs, err := stats.DescribeValues("GP", []float64{82, 82, 82}, 1.5)
	assert.NoError(t, err)
	WriteSummary(&buf, stats.Summary{Columns: []string{"GP"}, Stats: map[string]stats.ColumnStats{"GP": cs}})
	assert.Contains(t, buf.String(), "82.000")
	assert.Contains(t, buf.String(), "0 (0.0%)")
}
