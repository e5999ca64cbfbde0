package workflow

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
	"github.com/KaramelBytes/nbaclean-cli/internal/profile"
	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

const advancedCSV = `TEAM_ID,TEAM_NAME,GP,W,L,OFF_RATING,DEF_RATING,NET_RATING
1,Denver Nuggets ,82,57,25,115.8,112.5,3.3
2,Boston Celtics,82,64,18,122.2,111.6,10.6
2,Boston Celtics,82,64,18,122.2,111.6,10.6
3,Utah Jazz,82,NA,51,114.7,120.4,-5.7
4,Chicago Bulls,82,39,43,113.5,114.1,-0.6
5,Ghost Team,0,0,0,100,100,0
6,Miami Heat,82,46,35,113.0,112.4,0.6
`

func writeInput(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func builtin(t *testing.T, name string) profile.Profile {
	t.Helper()
	r, err := profile.Builtin()
	require.NoError(t, err)
	p, err := r.Get(name)
	require.NoError(t, err)
	return p
}

func TestRunAdvancedTeamStats(t *testing.T) {
	in := writeInput(t, "advanced_team_stats.csv", advancedCSV)
	out := filepath.Join(t.TempDir(), "cleaned")
	job := Job{
		Input:     in,
		Profile:   builtin(t, "advanced_team_stats"),
		OutputDir: out,
		Load:      table.DefaultLoadOptions(),
		Describe:  true,
	}

	res, err := Run(context.Background(), job, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "advanced_team_stats_CLEANED.csv"), res.Output)
	assert.Equal(t, 7, res.Report.RowsIn)
	assert.Equal(t, 4, res.Report.RowsOut)
	assert.Equal(t, 1, res.Report.Duplicates)
	assert.Equal(t, 1, res.Report.Violations["gp_positive"])
	assert.Equal(t, 1, res.Report.Violations["w_plus_l_eq_gp"])

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "TEAM_NAME,GP,W,L,OFF_RATING,DEF_RATING,NET_RATING,WIN_PCT", lines[0])
	assert.Equal(t, "Denver Nuggets,82,57,25,115.8,112.5,3.3,0.695", lines[1])
	assert.NotContains(t, string(data), "Ghost Team")

	raw, err := os.ReadFile(res.ReportPath)
	require.NoError(t, err)
	var rep clean.Report
	require.NoError(t, json.Unmarshal(raw, &rep))
	assert.Equal(t, res.Report.RunID, rep.RunID)

	require.NotNil(t, res.Summary)
	assert.Equal(t, []string{"GP", "W", "L", "OFF_RATING", "DEF_RATING", "NET_RATING"}, res.Summary.Columns)
	w, ok := res.Summary.Get("W")
	require.True(t, ok)
	assert.Equal(t, 4, w.Count)

	require.NotNil(t, res.Matrix)
	assert.Equal(t, []string{"W", "OFF_RATING", "DEF_RATING", "NET_RATING", "WIN_PCT"}, res.Matrix.Columns)
	c, _ := res.Matrix.At("W", "WIN_PCT")
	assert.InDelta(t, 1.0, float64(c), 1e-3)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	in := writeInput(t, "advanced_team_stats.csv", advancedCSV)
	out := filepath.Join(t.TempDir(), "cleaned")
	res, err := Run(context.Background(), Job{Input: in, Profile: builtin(t, "advanced_team_stats"), OutputDir: out, DryRun: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Equal(t, 4, res.Report.RowsOut)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunAbortKeepsPartialReport(t *testing.T) {
	in := writeInput(t, "advanced_team_stats.csv", "TEAM_NAME,W,L\nBoston Celtics,64,18\n")
	res, err := Run(context.Background(), Job{Input: in, Profile: builtin(t, "advanced_team_stats"), OutputDir: t.TempDir()}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, clean.ErrConfig)
	assert.True(t, res.Report.Aborted)
	assert.Empty(t, res.Output)
}

func TestRunBatch(t *testing.T) {
	out := t.TempDir()
	good := writeInput(t, "advanced_team_stats.csv", advancedCSV)
	teams := writeInput(t, "nba_teams.csv", "id,full_name,abbreviation,city,state,year_founded\n1,atlanta hawks,atl,Atlanta,Georgia,1949\n2,boston celtics,bos,Boston,,1946\n3,chicago bulls,chi,Chicago,Illinois,\n")
	jobs := []Job{
		{Input: good, Profile: builtin(t, "advanced_team_stats"), OutputDir: out},
		{Input: filepath.Join(out, "missing.csv"), Profile: builtin(t, "teams"), OutputDir: out},
		{Input: teams, Profile: builtin(t, "teams"), OutputDir: out},
	}

	results, err := RunBatch(context.Background(), jobs, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, good, results[0].Input)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
	assert.Equal(t, 1, Failed(results))

	data, err := os.ReadFile(results[2].Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Atlanta Hawks,ATL,Atlanta,Georgia,1949")
	assert.Contains(t, string(data), "Boston Celtics,BOS,Boston,Unknown,1946")
	assert.Contains(t, string(data), "Chicago Bulls,CHI,Chicago,Illinois,\n", "missing year stays empty")
	assert.Equal(t, 1, results[2].Report.Filled["state"])
	assert.Zero(t, results[2].Report.Filled["year_founded"])
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := writeInput(t, "advanced_team_stats.csv", advancedCSV)
	results, err := RunBatch(ctx, []Job{{Input: in, Profile: builtin(t, "advanced_team_stats"), OutputDir: t.TempDir()}}, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
