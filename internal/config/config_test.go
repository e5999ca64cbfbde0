package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "uncleaned_csv", c.InputDir)
	assert.Equal(t, "cleaned_csv", c.OutputDir)
	assert.Equal(t, 1.5, c.OutlierMultiplier)
	assert.Equal(t, 4, c.Workers)
	assert.True(t, c.Manifest)
	assert.Equal(t, "info", c.LogLevel)
	assert.Contains(t, c.MissingTokens, "NA")

	d := Defaults()
	assert.Equal(t, d.InputDir, c.InputDir)
	assert.Equal(t, d.OutputDir, c.OutputDir)
	assert.Equal(t, d.MissingTokens, c.MissingTokens)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: out\nworkers: 2\nlog_format: json\n"), 0o644))
	t.Setenv("NBACLEAN_OUTPUT_DIR", "from-env")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.OutputDir, "env wins over file")
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, "json", c.LogFormat)
}

func TestSetAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, c.Set("workers", "8"))
	require.NoError(t, c.Set("delimiter", "tab"))
	require.NoError(t, c.Set("missing_tokens", "NA, --"))
	require.NoError(t, c.Set("log_level", "DEBUG"))
	assert.Error(t, c.Set("workers", "0"))
	assert.Error(t, c.Set("delimiter", "#"))
	assert.Error(t, c.Set("log_format", "xml"))
	assert.Error(t, c.Set("api_key", "x"))

	require.NoError(t, Save(c, path))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, back.Workers)
	assert.Equal(t, "tab", back.Delimiter)
	assert.Equal(t, []string{"NA", "--"}, back.MissingTokens)
	assert.Equal(t, "debug", back.LogLevel)
}

func TestParseDelimiter(t *testing.T) {
	r, err := ParseDelimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)
	r, err = ParseDelimiter("")
	require.NoError(t, err)
	assert.Equal(t, rune(0), r)
}
