// Package config loads the janitord configuration file and environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/driftersoft/janitord/internal/engine"
)

// Config is the on-disk janitord.yaml structure. Every key can be overridden
// through the environment as JANITORD_<UPPER_KEY>.
type Config struct {
	Root         string   `mapstructure:"root"`
	Filter       string   `mapstructure:"filter"`
	FilterRegexp string   `mapstructure:"filter_regexp"`
	Protect      []string `mapstructure:"protect"`

	Timestamp     string        `mapstructure:"timestamp"`
	MaxAge        time.Duration `mapstructure:"max_age"`
	UsedThreshold float64       `mapstructure:"used_threshold"`

	RemoveCleanedDirs bool `mapstructure:"remove_cleaned_dirs"`
	RemoveEmptyDirs   bool `mapstructure:"remove_empty_dirs"`
	DryRun            bool `mapstructure:"dry_run"`
	AllowRootPath     bool `mapstructure:"allow_root_path"`

	Schedule string `mapstructure:"schedule"`
	Listen   string `mapstructure:"listen"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Load reads the config file at path (or the default search locations when
// path is empty), applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JANITORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("janitord")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/janitord")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file anywhere on the search path: defaults plus env only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("filter", "")
	v.SetDefault("filter_regexp", "")
	v.SetDefault("protect", []string{})
	v.SetDefault("timestamp", "mtime")
	v.SetDefault("max_age", time.Duration(0))
	v.SetDefault("used_threshold", 1.0)
	v.SetDefault("remove_cleaned_dirs", false)
	v.SetDefault("remove_empty_dirs", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("allow_root_path", false)
	v.SetDefault("schedule", "@every 15m")
	v.SetDefault("listen", "127.0.0.1:8667")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Validate checks everything that can be checked without touching the
// filesystem. Deeper validation (glob and regexp compilation, schedule
// parsing) happens in the constructors that consume the values.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root is required")
	}
	if !filepath.IsAbs(c.Root) {
		return fmt.Errorf("config: root %q must be an absolute path", c.Root)
	}
	if _, err := engine.ParseTimestampField(c.Timestamp); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.UsedThreshold < 0 || c.UsedThreshold > 1 {
		return fmt.Errorf("config: used_threshold %v outside [0, 1]", c.UsedThreshold)
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("config: max_age must not be negative")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}
