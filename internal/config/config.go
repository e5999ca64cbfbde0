package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

// Global configuration structure.
type Global struct {
	InputDir    string `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	ProfilesDir string `mapstructure:"profiles_dir" yaml:"profiles_dir"`

	// Reading raw exports
	Delimiter     string   `mapstructure:"delimiter" yaml:"delimiter"`
	MissingTokens []string `mapstructure:"missing_tokens" yaml:"missing_tokens"`

	OutlierMultiplier float64 `mapstructure:"outlier_multiplier" yaml:"outlier_multiplier"`
	Workers           int     `mapstructure:"workers" yaml:"workers"`
	Manifest          bool    `mapstructure:"manifest" yaml:"manifest"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Defaults returns the settings used for keys that neither the config file
// nor the environment sets.
func Defaults() Global {
	return Global{
		InputDir:          "uncleaned_csv",
		OutputDir:         "cleaned_csv",
		MissingTokens:     append([]string(nil), table.DefaultMissingTokens...),
		OutlierMultiplier: 1.5,
		Workers:           4,
		Manifest:          true,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// DefaultDir is the per-user configuration directory, ~/.nbaclean.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".nbaclean"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.nbaclean/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Environment variables use the
// NBACLEAN_ prefix, e.g. NBACLEAN_OUTPUT_DIR.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("NBACLEAN")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("profiles_dir", d.ProfilesDir)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("missing_tokens", d.MissingTokens)
	v.SetDefault("outlier_multiplier", d.OutlierMultiplier)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ProfilesDir == "" {
		if dir, err := DefaultDir(); err == nil {
			c.ProfilesDir = filepath.Join(dir, "profiles")
		}
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return &c, nil
}

// Set assigns one key from its string form, as given to "config set".
func (c *Global) Set(key, val string) error {
	switch key {
	case "input_dir":
		c.InputDir = val
	case "output_dir":
		c.OutputDir = val
	case "profiles_dir":
		c.ProfilesDir = val
	case "delimiter":
		if _, err := ParseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	case "missing_tokens":
		var toks []string
		for _, t := range strings.Split(val, ",") {
			toks = append(toks, strings.TrimSpace(t))
		}
		c.MissingTokens = toks
	case "outlier_multiplier":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for outlier_multiplier: %v", val)
		}
		c.OutlierMultiplier = f
	case "workers":
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 {
			return fmt.Errorf("invalid int for workers: %v", val)
		}
		c.Workers = i
	case "manifest":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for manifest: %w", err)
		}
		c.Manifest = b
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text|json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// ParseDelimiter maps the accepted spellings to a rune; "" means auto.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | '|' | 'tab')", s)
}
