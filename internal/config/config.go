// Package config loads agent and CLI settings from an optional YAML file and
// FOCUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/anaygoyal09/Focus/internal/budget"
	"github.com/anaygoyal09/Focus/internal/domain"
	"github.com/anaygoyal09/Focus/internal/guard"
	"github.com/anaygoyal09/Focus/internal/infra"
	"github.com/anaygoyal09/Focus/internal/usecase"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "FOCUS"
)

// Config holds the complete application configuration
type Config struct {
	DataDir           string          `mapstructure:"data_dir"`
	TickInterval      time.Duration   `mapstructure:"tick_interval"`
	SelfBundleID      string          `mapstructure:"self_bundle_id"`
	WarningThresholds []time.Duration `mapstructure:"warning_thresholds"`
	ExtensionMinutes  int             `mapstructure:"extension_minutes"`
	DefaultAppLimit   time.Duration   `mapstructure:"default_app_limit"`
	MinAppLimit       time.Duration   `mapstructure:"min_app_limit"`
	StatusEveryTicks  int             `mapstructure:"status_every_ticks"`
	Guard             GuardConfig     `mapstructure:"guard"`
	Logging           LoggingConfig   `mapstructure:"logging"`
	Metrics           MetricsConfig   `mapstructure:"metrics"`
}

// GuardConfig defines session filter settings that are not user-editable at runtime
type GuardConfig struct {
	AlwaysAllowed []string `mapstructure:"always_allowed"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // Empty logs to the data directory
}

// MetricsConfig defines the Prometheus textfile export
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"` // Empty writes metrics.prom in the data directory
}

// Load loads configuration from file and environment variables. An empty
// configPath looks for config.yaml in the default data directory and
// tolerates its absence; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	return load(configPath, infra.DefaultDataDir())
}

func load(configPath, defaultDataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultDataDir)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(defaultDataDir)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.fillPaths()
	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("tick_interval", "1s")
	v.SetDefault("self_bundle_id", infra.DefaultSelfBundleID)
	v.SetDefault("warning_thresholds", thresholdStrings(domain.DefaultWarningThresholds()))
	v.SetDefault("extension_minutes", usecase.DefaultExtensionMinutes)
	v.SetDefault("default_app_limit", budget.DefaultAppLimit.String())
	v.SetDefault("min_app_limit", budget.MinAppLimit.String())
	v.SetDefault("status_every_ticks", 10)

	v.SetDefault("guard.always_allowed", guard.DefaultAlwaysAllowed)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.textfile", "")
}

func thresholdStrings(ds []time.Duration) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", cfg.TickInterval)
	}
	if cfg.SelfBundleID == "" {
		return fmt.Errorf("self_bundle_id is required")
	}
	for _, t := range cfg.WarningThresholds {
		if t <= 0 {
			return fmt.Errorf("warning threshold must be positive, got %s", t)
		}
	}
	if cfg.ExtensionMinutes <= 0 {
		return fmt.Errorf("extension_minutes must be positive, got %d", cfg.ExtensionMinutes)
	}
	if cfg.MinAppLimit <= 0 {
		return fmt.Errorf("min_app_limit must be positive, got %s", cfg.MinAppLimit)
	}
	if cfg.DefaultAppLimit < cfg.MinAppLimit {
		return fmt.Errorf("default_app_limit %s is below min_app_limit %s", cfg.DefaultAppLimit, cfg.MinAppLimit)
	}
	if cfg.StatusEveryTicks <= 0 {
		return fmt.Errorf("status_every_ticks must be positive, got %d", cfg.StatusEveryTicks)
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", cfg.Logging.Level)
	}
	return nil
}

func (c *Config) fillPaths() {
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.DataDir, "focus.log")
	}
	if c.Metrics.Textfile == "" {
		c.Metrics.Textfile = filepath.Join(c.DataDir, "metrics.prom")
	}
}

// Host returns the engine configuration.
func (c *Config) Host() usecase.HostConfig {
	return usecase.HostConfig{
		Budget: budget.Config{
			SelfID:          c.SelfBundleID,
			TickDuration:    c.TickInterval,
			Thresholds:      c.WarningThresholds,
			DefaultAppLimit: c.DefaultAppLimit,
			MinAppLimit:     c.MinAppLimit,
		},
		Guard: guard.Config{
			SelfID:        c.SelfBundleID,
			AlwaysAllowed: c.Guard.AlwaysAllowed,
			TickDuration:  c.TickInterval,
		},
		ExtensionMinutes: c.ExtensionMinutes,
	}
}
