// Package config loads readstats settings from an optional YAML file and
// READSTATS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "READSTATS_"

type API struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Timelines         bool    `yaml:"timelines"`
}

type Server struct {
	Port string `yaml:"port"`
}

type Covers struct {
	BaseURL string `yaml:"base_url"`
	Version int    `yaml:"version"`
}

type Trend struct {
	Days       int    `yaml:"days"`
	Precedence string `yaml:"precedence"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds all configuration for the application.
type Config struct {
	SnapshotDir string `yaml:"snapshot_dir"`
	Timezone    string `yaml:"timezone"`
	API         API    `yaml:"api"`
	Server      Server `yaml:"server"`
	Covers      Covers `yaml:"covers"`
	Trend       Trend  `yaml:"trend"`
	Log         Log    `yaml:"log"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		SnapshotDir: "./snapshot",
		API:         API{RequestsPerSecond: 5},
		Server:      Server{Port: "8888"},
		Covers:      Covers{Version: 1},
		Trend:       Trend{Days: 90, Precedence: "longest"},
		Log:         Log{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is not empty, then environment overrides. A .env file in the working
// directory is loaded first; variables already set take precedence over it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	setString("SNAPSHOT_DIR", &c.SnapshotDir)
	setString("TIMEZONE", &c.Timezone)
	setString("API_URL", &c.API.BaseURL)
	setString("API_KEY", &c.API.APIKey)
	setString("PORT", &c.Server.Port)
	setString("COVER_BASE_URL", &c.Covers.BaseURL)
	setString("TREND_PRECEDENCE", &c.Trend.Precedence)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	var errs []error
	if v := os.Getenv(EnvPrefix + "API_RPS"); v != "" {
		rps, err := cast.ToFloat64E(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sAPI_RPS must be a number: %w", EnvPrefix, err))
		}
		c.API.RequestsPerSecond = rps
	}
	if v := os.Getenv(EnvPrefix + "API_TIMELINES"); v != "" {
		timelines, err := cast.ToBoolE(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sAPI_TIMELINES must be a boolean: %w", EnvPrefix, err))
		}
		c.API.Timelines = timelines
	}
	if v := os.Getenv(EnvPrefix + "TREND_DAYS"); v != "" {
		days, err := cast.ToIntE(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTREND_DAYS must be an integer: %w", EnvPrefix, err))
		}
		c.Trend.Days = days
	}
	if v := os.Getenv(EnvPrefix + "COVER_VERSION"); v != "" {
		version, err := cast.ToIntE(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCOVER_VERSION must be an integer: %w", EnvPrefix, err))
		}
		c.Covers.Version = version
	}
	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.SnapshotDir == "" {
		errs = append(errs, errors.New("snapshot_dir is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("api.requests_per_second must not be negative"))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if !slices.Contains([]int{30, 90, 180, 365}, c.Trend.Days) {
		errs = append(errs, fmt.Errorf("trend.days must be one of 30, 90, 180, 365, got %d", c.Trend.Days))
	}
	if !slices.Contains([]string{"longest", "freshest"}, c.Trend.Precedence) {
		errs = append(errs, fmt.Errorf("trend.precedence must be longest or freshest, got %q", c.Trend.Precedence))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Location is the zone dates are bucketed in. Empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Logger builds the structured logger described by the log settings.
// verbose forces debug level.
func (c *Config) Logger(w io.Writer, verbose bool) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
