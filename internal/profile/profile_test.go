package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
)

func TestBuiltinProfiles(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"active_players", "advanced_team_stats", "all_players", "league_standings",
		"player_career", "player_lookup", "teams",
	}, r.Names())

	for _, p := range r.List() {
		_, err := clean.New(p.Clean)
		assert.NoError(t, err, p.Name)
		assert.Equal(t, "builtin", p.Origin)
		assert.Equal(t, p.Name, p.Clean.Dataset)
	}

	adv, err := r.Get("advanced_team_stats")
	require.NoError(t, err)
	assert.Equal(t, []string{"W", "OFF_RATING", "DEF_RATING", "NET_RATING", "WIN_PCT"}, adv.Correlate)
	require.Len(t, adv.Clean.Rules, 2)
	assert.Equal(t, clean.ActionWarn, adv.Clean.Rules[1].Action)
	require.NotNil(t, adv.Clean.Rules[0].Min)
	assert.Equal(t, 0.0, *adv.Clean.Rules[0].Min)
	assert.True(t, adv.Clean.Rules[0].MinExclusive)

	players, ok := r.ForInput("data/uncleaned/active_players.CSV")
	require.True(t, ok)
	assert.Equal(t, "active_players", players.Name)
	assert.True(t, players.Clean.Outliers.Enabled)
}

func TestGetUnknown(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)
	_, err = r.Get("box_scores")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": "name: x\nversion: 1\nclean:\n  dataset: x\n  colums: []\n",
		"no version":    "name: x\nclean:\n  dataset: x\n",
		"bad action":    "name: x\nversion: 1\nclean:\n  rules:\n    - {name: r, type: range, action: shout, column: GP, min: 0}\n",
		"bad coercion":  "name: x\nversion: 1\nclean:\n  columns:\n    - {name: GP, coerce: {to: roman}}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), "test.yaml")
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("name: x\nversion: 1\nclean:\n  rules:\n    - {name: r, type: range, action: shout, column: GP, min: 0}\n"), "t")
	assert.ErrorIs(t, err, clean.ErrConfig)
}

func TestLoadOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	doc := `name: teams
version: 2
description: local teams
clean:
  columns:
    - name: full_name
      coerce: {to: upper}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.yml"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	r, err := Load(dir)
	require.NoError(t, err)
	p, err := r.Get("teams")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Version)
	assert.Equal(t, "teams", p.Clean.Dataset)
	assert.Equal(t, filepath.Join(dir, "teams.yml"), p.Origin)
	assert.Len(t, r.Names(), 7)

	r, err = Load(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Len(t, r.Names(), 7)
}

func TestMarshalRoundTrip(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)
	p, err := r.Get("league_standings")
	require.NoError(t, err)
	data, err := p.Marshal()
	require.NoError(t, err)
	back, err := Parse(data, "builtin")
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestPresent(t *testing.T) {
	have := map[string]bool{"W": true, "PTS": true}
	got := Present([]string{"GP", "W", "PTS"}, func(c string) bool { return have[c] })
	assert.Equal(t, []string{"W", "PTS"}, got)
}
