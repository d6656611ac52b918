// Package config loads recruiter settings from a config file, RECRUITER_*
// environment variables and built-in defaults, in increasing order of
// precedence from defaults to environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RECRUITER_DATABASE_URL.
const EnvPrefix = "RECRUITER"

// Defaults
const (
	DefaultDatabaseURL    = "data/recruiter.db"
	DefaultContentRoot    = "."
	DefaultReportDir      = "reports"
	DefaultStrategy       = "shortlist"
	DefaultSearchInterval = 300 * time.Millisecond
	DefaultServerAddr     = ":8080"
	DefaultServerRate     = 60 // requests per minute per agent
	DefaultServerBurst    = 10
)

// ServerConfig configures the bus HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// RatePerMinute and Burst bound each agent's request rate.
	RatePerMinute int `mapstructure:"rate_per_minute"`
	Burst         int `mapstructure:"burst"`
}

// Config holds every setting the CLI reads. All fields are optional;
// missing values use defaults or come from CLI flags.
type Config struct {
	// DatabaseURL is a SQLite file path or a postgres:// URL.
	DatabaseURL string `mapstructure:"database_url"`
	// ContentRoot holds the candidates/ and jobs/ artifact directories.
	ContentRoot    string `mapstructure:"content_root"`
	ReportDir      string `mapstructure:"report_dir"`
	Strategy       string `mapstructure:"strategy"`
	StrategiesFile string `mapstructure:"strategies_file"`

	APIKey string            `mapstructure:"api_key"` // Gemini API key
	Models map[string]string `mapstructure:"models"`  // tier -> model name overrides

	SearchInterval time.Duration `mapstructure:"search_interval"`
	UseBrowser     bool          `mapstructure:"use_browser"`
	Verbose        bool          `mapstructure:"verbose"`

	Server ServerConfig `mapstructure:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DatabaseURL:    DefaultDatabaseURL,
		ContentRoot:    DefaultContentRoot,
		ReportDir:      DefaultReportDir,
		Strategy:       DefaultStrategy,
		SearchInterval: DefaultSearchInterval,
		Server: ServerConfig{
			Addr:          DefaultServerAddr,
			RatePerMinute: DefaultServerRate,
			Burst:         DefaultServerBurst,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	d := Default()
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("content_root", d.ContentRoot)
	v.SetDefault("report_dir", d.ReportDir)
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("strategies_file", "")
	v.SetDefault("api_key", "")
	v.SetDefault("models", map[string]string{})
	v.SetDefault("search_interval", d.SearchInterval)
	v.SetDefault("use_browser", false)
	v.SetDefault("verbose", false)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_per_minute", d.Server.RatePerMinute)
	v.SetDefault("server.burst", d.Server.Burst)
	return v
}

// Load reads the config file at path (YAML, JSON or TOML by extension) and
// applies environment overrides. An empty path uses defaults and environment
// only; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required values are checked by the commands that need them.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("'database_url' must not be empty"))
	}
	if c.SearchInterval < 0 {
		errs = append(errs, errors.New("'search_interval' must be non-negative"))
	}
	if c.Server.RatePerMinute < 0 || c.Server.Burst < 0 {
		errs = append(errs, errors.New("'server.rate_per_minute' and 'server.burst' must be non-negative"))
	}
	if c.StrategiesFile != "" {
		if _, err := os.Stat(c.StrategiesFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("strategies file not found: %s", c.StrategiesFile))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a copy of c with empty fields filled from defaults.
// Bools are not merged: unset and false cannot be told apart.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ContentRoot == "" {
		result.ContentRoot = defaults.ContentRoot
	}
	if result.ReportDir == "" {
		result.ReportDir = defaults.ReportDir
	}
	if result.Strategy == "" {
		result.Strategy = defaults.Strategy
	}
	if result.StrategiesFile == "" {
		result.StrategiesFile = defaults.StrategiesFile
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if len(result.Models) == 0 {
		result.Models = defaults.Models
	}
	if result.SearchInterval == 0 {
		result.SearchInterval = defaults.SearchInterval
	}
	if result.Server.Addr == "" {
		result.Server.Addr = defaults.Server.Addr
	}
	if result.Server.RatePerMinute == 0 {
		result.Server.RatePerMinute = defaults.Server.RatePerMinute
	}
	if result.Server.Burst == 0 {
		result.Server.Burst = defaults.Server.Burst
	}
	return result
}
