package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/nbaclean-cli/internal/config"
	"github.com/KaramelBytes/nbaclean-cli/internal/logging"
	"github.com/KaramelBytes/nbaclean-cli/internal/profile"
	"github.com/KaramelBytes/nbaclean-cli/internal/table"
)

var (
	// Global flags
	cfgFile       string
	envFile       string
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nbaclean",
	Short: "nbaclean: clean raw NBA stat exports and describe the results",
	Long: `nbaclean cleans raw NBA data exports (teams, players, careers, standings,
team ratings) with declarative per-dataset profiles, writes cleaned CSVs with an
audit report, and computes descriptive statistics and correlations.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.nbaclean/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load NBACLEAN_* variables from a .env file before reading config")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load env file: %v\n", err)
		}
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		d := cfgpkg.Defaults()
		c = &d
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	logger = logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// registry returns built-in profiles overlaid with the user's profiles_dir.
func registry() (*profile.Registry, error) {
	if cfg == nil || cfg.ProfilesDir == "" {
		return profile.Builtin()
	}
	return profile.Load(cfg.ProfilesDir)
}

// resolveProfile picks the named profile, or the one whose input file name
// matches path. Cleaned outputs (<stem>_CLEANED.csv) match their source.
func resolveProfile(reg *profile.Registry, name, path string) (profile.Profile, error) {
	if name != "" {
		return reg.Get(name)
	}
	if p, ok := reg.ForInput(path); ok {
		return p, nil
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if stem, ok := strings.CutSuffix(strings.TrimSuffix(base, ext), "_CLEANED"); ok {
		if p, ok := reg.ForInput(stem + ".csv"); ok {
			return p, nil
		}
	}
	return profile.Profile{}, fmt.Errorf("no profile matches %s (use --profile; see 'nbaclean profiles list'): %w", base, profile.ErrUnknownProfile)
}

// withMultiplier applies the configured IQR multiplier to profiles that do
// not set their own.
func withMultiplier(p profile.Profile) profile.Profile {
	if cfg != nil && p.Clean.Outliers.Multiplier == 0 && cfg.OutlierMultiplier > 0 {
		p.Clean.Outliers.Multiplier = cfg.OutlierMultiplier
	}
	return p
}

// loadOptions builds reader options from config plus per-command overrides.
func loadOptions(delimiter, sheet string) (table.LoadOptions, error) {
	opt := table.DefaultLoadOptions()
	if cfg != nil && len(cfg.MissingTokens) > 0 {
		opt.MissingTokens = cfg.MissingTokens
	}
	d := delimiter
	if d == "" && cfg != nil {
		d = cfg.Delimiter
	}
	r, err := cfgpkg.ParseDelimiter(d)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = r
	opt.Sheet = sheet
	return opt, nil
}

func outputDir(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.OutputDir
}

func manifestEnabled() bool { return cfg == nil || cfg.Manifest }
