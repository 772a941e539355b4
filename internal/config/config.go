package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. SMARTBIZ_TOP_N.
const EnvPrefix = "SMARTBIZ"

// Global configuration structure.
type Global struct {
	// Business profile shown on reports
	ProfileName  string `mapstructure:"profile_name" yaml:"profile_name"`
	BusinessType string `mapstructure:"business_type" yaml:"business_type"`
	FoundingYear int    `mapstructure:"founding_year" yaml:"founding_year"`

	// Analysis
	TopN               int     `mapstructure:"top_n" yaml:"top_n"`
	ParetoThreshold    float64 `mapstructure:"pareto_threshold" yaml:"pareto_threshold"`
	DecimalSeparator   string  `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string  `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	DayFirst           bool    `mapstructure:"day_first" yaml:"day_first"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP server
	ServerAddr     string  `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadMB    int     `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
}

var defaults = map[string]any{
	"profile_name":        "",
	"business_type":       "",
	"founding_year":       0,
	"top_n":               10,
	"pareto_threshold":    0.8,
	"decimal_separator":   "",
	"thousands_separator": "",
	"day_first":           false,
	"log_level":           "info",
	"log_format":          "console",
	"server_addr":         ":8080",
	"max_upload_mb":       10,
	"rate_limit_rps":      5.0,
	"rate_limit_burst":    10,
}

// Keys returns every configuration key in sorted order.
func Keys() []string {
	out := make([]string, 0, len(defaults))
	for k := range defaults {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".smartbiz", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.smartbiz/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
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

// Defaults returns the built-in configuration without reading files or env.
func Defaults() *Global {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env file in the working directory) > config file > defaults.
// Command-line flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "profile_name":
		return c.ProfileName, nil
	case "business_type":
		return c.BusinessType, nil
	case "founding_year":
		return strconv.Itoa(c.FoundingYear), nil
	case "top_n":
		return strconv.Itoa(c.TopN), nil
	case "pareto_threshold":
		return strconv.FormatFloat(c.ParetoThreshold, 'f', -1, 64), nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "day_first":
		return strconv.FormatBool(c.DayFirst), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "server_addr":
		return c.ServerAddr, nil
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), nil
	case "rate_limit_rps":
		return strconv.FormatFloat(c.RateLimitRPS, 'f', -1, 64), nil
	case "rate_limit_burst":
		return strconv.Itoa(c.RateLimitBurst), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "profile_name":
		c.ProfileName = val
	case "business_type":
		c.BusinessType = val
	case "founding_year":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for founding_year: %v", val)
		}
		c.FoundingYear = i
	case "top_n":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for top_n: %v", val)
		}
		c.TopN = i
	case "pareto_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("invalid float for pareto_threshold: %v (use a value in (0, 1])", val)
		}
		c.ParetoThreshold = f
	case "decimal_separator", "thousands_separator":
		if _, err := ParseSeparator(val); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if key == "decimal_separator" {
			c.DecimalSeparator = val
		} else {
			c.ThousandsSeparator = val
		}
	case "day_first":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for day_first: %w", err)
		}
		c.DayFirst = b
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "console", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	case "server_addr":
		c.ServerAddr = val
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	case "rate_limit_rps":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for rate_limit_rps: %v", val)
		}
		c.RateLimitRPS = f
	case "rate_limit_burst":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for rate_limit_burst: %v", val)
		}
		c.RateLimitBurst = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// ParseSeparator converts a separator setting to a rune. Empty means
// auto-detect (0); "space" and "tab" name whitespace separators.
func ParseSeparator(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "space":
		return ' ', nil
	case "tab", `\t`:
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return r[0], nil
}
