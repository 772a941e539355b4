package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/smartbiz-cli/internal/config"
	"github.com/KaramelBytes/smartbiz-cli/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Structured logger for diagnostics (stderr)
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "smartbiz",
	Short: "SmartBiz CLI: sales analytics for small businesses",
	Long: `SmartBiz turns a sales spreadsheet (CSV or XLSX) into a report: revenue totals,
top products and customers, daily/monthly/weekday trends, Pareto segments and a short
summary of findings. It can also serve the same analysis over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.smartbiz/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	stderr := rootCmd.ErrOrStderr()
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	l, err := logger.New(logger.Options{Level: level, Format: format, Out: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "⚠ Warning: %v\n", err)
		l, _ = logger.New(logger.Options{Level: level, Out: stderr})
	}
	log = l
}

// currentConfig returns the loaded configuration, or defaults when none was loaded.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}
