package clean

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

func teamConfig() Config {
	return Config{
		Dataset: "teams",
		Columns: []ColumnSpec{
			{Name: "TEAM_NAME", Kind: KindCategorical, Coerce: &CoerceRule{Target: CoerceTitle}},
			{Name: "W", Kind: KindNumeric, Missing: Median(), Coerce: &CoerceRule{Target: CoerceNumeric}},
			{Name: "L", Kind: KindNumeric, Coerce: &CoerceRule{Target: CoerceNumeric}},
			{Name: "GP", Kind: KindNumeric, Missing: Drop(), Coerce: &CoerceRule{Target: CoerceNumeric}},
		},
		Defaults: Defaults{Numeric: Constant("0"), Categorical: Constant("Unknown")},
		Outliers: OutlierPolicy{Enabled: true, Columns: []string{"W"}},
		Rules: []ConsistencyRule{
			{Name: "gp_positive", Type: RuleRange, Action: ActionDrop, Column: "GP", Min: fptr(0), MinExclusive: true},
			{Name: "w_plus_l_eq_gp", Type: RuleSumEquals, Action: ActionWarn, Terms: []string{"W", "L"}, Target: "GP"},
		},
		Derived: []DerivedColumn{{Name: "WIN_PCT", Type: DeriveRatio, Numerator: "W", Denominator: "GP", Digits: 3}},
	}
}

func rawTeams() *table.Table {
	return table.MustFromRows([]string{"TEAM_NAME", "W", "L", "GP"},
		table.Row{str(" denver nuggets "), str("57"), num(25), num(82)},
		table.Row{str("Boston Celtics"), num(62), num(20), num(82)},
		table.Row{str("boston celtics "), str("62"), num(20), num(82)},
		table.Row{str("Utah Jazz"), null(), num(45), num(82)},
		table.Row{str("Chicago Bulls"), num(50), num(32), num(82)},
		table.Row{str("Miami Heat"), str("abc"), num(38), num(82)},
		table.Row{str("Orlando Magic"), num(48), num(34), num(82)},
		table.Row{str("Detroit Pistons"), num(5), num(77), num(82)},
	)
}

func TestPipelineTeams(t *testing.T) {
	var logs bytes.Buffer
	p, err := New(teamConfig(), WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	require.NoError(t, err)

	in := rawTeams()
	out, rep, err := p.Run(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"TEAM_NAME", "W", "L", "GP", "WIN_PCT"}, out.Columns())
	assert.Equal(t, 8, rep.RowsIn)
	assert.Equal(t, 6, rep.RowsOut)
	assert.Equal(t, 6, out.Len())
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "teams", rep.Dataset)

	assert.Equal(t, 1, rep.Coerced["W"])
	assert.Equal(t, 2, rep.Filled["W"])
	assert.Equal(t, 1, rep.Duplicates)
	assert.Equal(t, 1, rep.Outliers["W"])
	assert.Equal(t, 1, rep.OutlierRows)
	assert.Equal(t, 2, rep.Violations["w_plus_l_eq_gp"])
	assert.Equal(t, 0, rep.Violations["gp_positive"])

	dedupe, ok := rep.Stage(StageDedupe)
	require.True(t, ok)
	assert.Equal(t, 1, dedupe.Removed())
	outl, _ := rep.Stage(StageOutliers)
	assert.Equal(t, StageDelta{Stage: StageOutliers, RowsIn: 7, RowsOut: 6}, outl)
	require.Len(t, rep.Stages, 8)

	assert.Equal(t, str("Denver Nuggets"), out.Get(0, "TEAM_NAME"))
	assert.Equal(t, num(57), out.Get(0, "W"))
	assert.Equal(t, num(0.695), out.Get(0, "WIN_PCT"))
	// median of 57, 62, 62, 50, 48, 5
	assert.Equal(t, num(53.5), out.Get(2, "W"))

	assert.Equal(t, str(" denver nuggets "), in.Get(0, "TEAM_NAME"), "input untouched")
	assert.Equal(t, 8, in.Len())
	assert.Contains(t, logs.String(), "w_plus_l_eq_gp")
}

func TestPipelineIdempotent(t *testing.T) {
	p, err := New(teamConfig())
	require.NoError(t, err)
	once, _, err := p.Run(rawTeams())
	require.NoError(t, err)

	twice, rep, err := p.Run(once)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice), "second run changed the table")
	assert.False(t, rep.Changed())
	for _, d := range rep.Stages {
		assert.Zero(t, d.Removed(), "stage %s", d.Stage)
	}
}

func TestPipelineWarnOnlyScenario(t *testing.T) {
	p, err := New(Config{Rules: []ConsistencyRule{
		{Name: "w_plus_l_eq_gp", Type: RuleSumEquals, Action: ActionWarn, Terms: []string{"W", "L"}, Target: "GP"},
	}})
	require.NoError(t, err)
	in := table.MustFromRows([]string{"GP", "W", "L"},
		table.Row{num(10), num(6), num(4)},
		table.Row{num(10), num(7), num(4)},
	)
	out, rep, err := p.Run(in)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, 1, rep.Violations["w_plus_l_eq_gp"])
	assert.Len(t, rep.Warnings, 1)
}

func TestPipelineWeightScenario(t *testing.T) {
	p, err := New(Config{Dataset: "players", Outliers: OutlierPolicy{Enabled: true}})
	require.NoError(t, err)
	in := table.MustFromRows([]string{"weight"},
		table.Row{num(200)}, table.Row{num(205)}, table.Row{num(210)}, table.Row{num(215)}, table.Row{num(600)},
	)
	out, rep, err := p.Run(in)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
	assert.Equal(t, 1, rep.OutlierRows)
	assert.InDelta(t, 20.0, rep.OutlierPercent, 1e-9)
	assert.Equal(t, 1, rep.Outliers["weight"])
	b := rep.OutlierBounds["weight"]
	for _, v := range out.Floats("weight") {
		assert.True(t, b.Contains(v))
	}
	assert.NotEmpty(t, rep.Warnings, "20% removal is reported as high")
}

func TestPipelineEmptyTable(t *testing.T) {
	p, err := New(teamConfig())
	require.NoError(t, err)
	out, rep, err := p.Run(table.New(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 0, rep.RowsIn)
	assert.Equal(t, 0, rep.RowsOut)
	assert.False(t, rep.Aborted)

	out, rep, err = p.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 0, rep.RowsOut)
}

func TestPipelineMissingRequiredColumn(t *testing.T) {
	p, err := New(teamConfig())
	require.NoError(t, err)
	in := table.MustFromRows([]string{"TEAM_NAME", "W", "L"},
		table.Row{str("DEN"), num(57), num(25)},
	)
	out, rep, err := p.Run(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "GP", se.Column)
	assert.Nil(t, out)
	assert.True(t, rep.Aborted)
	assert.Equal(t, 1, rep.RowsIn)
	assert.Empty(t, rep.Stages)
}

func TestPipelineOptionalColumnAndAbort(t *testing.T) {
	cfg := Config{Columns: []ColumnSpec{
		{Name: "nickname", Optional: true, Missing: Drop()},
		{Name: "weight", Kind: KindNumeric, Missing: Median(), Coerce: &CoerceRule{Target: CoerceNumeric}},
	}}
	p, err := New(cfg)
	require.NoError(t, err)
	in := table.MustFromRows([]string{"player", "weight"},
		table.Row{str("a"), str("heavy")},
		table.Row{str("b"), null()},
	)
	out, rep, err := p.Run(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDistribution)
	assert.Nil(t, out)
	assert.True(t, rep.Aborted)
	require.Len(t, rep.Stages, 2, "select and coerce ran before the abort")
	assert.Equal(t, 1, rep.Coerced["weight"])
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Rules: []ConsistencyRule{{Name: "x", Type: "regex", Action: ActionWarn}}})
	assert.ErrorIs(t, err, ErrConfig)
}
