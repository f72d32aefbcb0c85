// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	User         UserConfig         `toml:"user"`
	Board        BoardConfig        `toml:"board"`
	Storage      StorageConfig      `toml:"storage"`
	Subscription SubscriptionConfig `toml:"subscription"`
	Log          LogConfig          `toml:"log"`
	UI           UIConfig           `toml:"ui"`
}

// UserConfig identifies the local user. Authentication happens elsewhere.
type UserConfig struct {
	ID string `toml:"id"`
}

// BoardConfig holds weekly board settings.
type BoardConfig struct {
	Calendar               string `toml:"calendar"`                 // "gregorian" or "ethiopian"
	WeeksAhead             int    `toml:"weeks_ahead"`              // weeks generated from a new template
	GenerateTimeoutSeconds int    `toml:"generate_timeout_seconds"` // bound on each background generation
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// SubscriptionConfig holds plan approval and expiry settings.
type SubscriptionConfig struct {
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
	ApprovalDays         int `toml:"approval_days"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
	Output string `toml:"output"` // stderr, stdout, or a file path
}

// UIConfig holds display settings.
type UIConfig struct {
	TimeFormat string `toml:"time_format"` // "24" or "12"
	Theme      string `toml:"theme"`       // browser theme: "mocha", "latte" or "light"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Board: BoardConfig{
			Calendar:               "gregorian",
			WeeksAhead:             8,
			GenerateTimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Subscription: SubscriptionConfig{
			SweepIntervalMinutes: 60,
			ApprovalDays:         30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		UI: UIConfig{
			TimeFormat: "24",
			Theme:      "mocha",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "shcadule.db"
	}
	return filepath.Join(home, ".local", "share", "shcadule", "shcadule.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "shcadule", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies SHCADULE_* environment variables to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"SHCADULE_USER_ID":     &cfg.User.ID,
		"SHCADULE_CALENDAR":    &cfg.Board.Calendar,
		"SHCADULE_DB_PATH":     &cfg.Storage.DBPath,
		"SHCADULE_LOG_LEVEL":   &cfg.Log.Level,
		"SHCADULE_LOG_FORMAT":  &cfg.Log.Format,
		"SHCADULE_LOG_OUTPUT":  &cfg.Log.Output,
		"SHCADULE_TIME_FORMAT": &cfg.UI.TimeFormat,
		"SHCADULE_THEME":       &cfg.UI.Theme,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SHCADULE_WEEKS_AHEAD":            &cfg.Board.WeeksAhead,
		"SHCADULE_GENERATE_TIMEOUT":       &cfg.Board.GenerateTimeoutSeconds,
		"SHCADULE_SWEEP_INTERVAL_MINUTES": &cfg.Subscription.SweepIntervalMinutes,
		"SHCADULE_APPROVAL_DAYS":          &cfg.Subscription.ApprovalDays,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", name, v)
		}
		*dst = n
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Board.Calendar) {
	case "", "gregorian", "ethiopian":
	default:
		return fmt.Errorf("calendar must be 'gregorian' or 'ethiopian', got %q", c.Board.Calendar)
	}
	if c.Board.WeeksAhead < 1 {
		return errors.New("weeks_ahead must be at least 1")
	}
	if c.Board.GenerateTimeoutSeconds < 1 {
		return errors.New("generate_timeout_seconds must be at least 1")
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}

	if c.Subscription.SweepIntervalMinutes < 1 {
		return errors.New("sweep_interval_minutes must be at least 1")
	}
	if c.Subscription.ApprovalDays < 1 {
		return errors.New("approval_days must be at least 1")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got %q", c.Log.Format)
	}
	if c.Log.Output == "" {
		return errors.New("log output must be set")
	}

	if c.UI.TimeFormat != "24" && c.UI.TimeFormat != "12" {
		return fmt.Errorf("time_format must be \"24\" or \"12\", got %q", c.UI.TimeFormat)
	}
	return nil
}

// GenerateTimeout returns the background generation bound as a duration.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.Board.GenerateTimeoutSeconds) * time.Second
}

// SweepInterval returns how often expired subscriptions are checked.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Subscription.SweepIntervalMinutes) * time.Minute
}

// ApprovalPeriod returns how long an approved plan stays active.
func (c *Config) ApprovalPeriod() time.Duration {
	return time.Duration(c.Subscription.ApprovalDays) * 24 * time.Hour
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
