// Package config provides configuration management for the diagnostics tool.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment
// variables. Environment variables take precedence over file values.
// Environment variable format: EDGEDIAG_<SECTION>_<KEY>
// (e.g., EDGEDIAG_INSPECTION_CONCURRENCY).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return unmarshal(v)
}

// LoadOrDefaults behaves like Load but falls back to the built-in defaults
// when the file at path does not exist. Used when the operator did not name
// a config file explicitly.
func LoadOrDefaults(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}
	return unmarshal(newViper())
}

// newViper creates a viper instance with defaults and env binding applied.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EDGEDIAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// unmarshal decodes and validates the assembled configuration.
func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// SSH defaults
	v.SetDefault("ssh.connect_timeout", 10*time.Second)
	v.SetDefault("ssh.command_timeout", 30*time.Second)
	v.SetDefault("ssh.key_path", "~/.ssh/id_ed25519")
	v.SetDefault("ssh.key_comment", "generated-by-diagnostic")

	// Inspection defaults
	v.SetDefault("inspection.concurrency", 5)

	// Thresholds defaults
	v.SetDefault("thresholds.usage.warning", 70.0)
	v.SetDefault("thresholds.usage.critical", 85.0)
	v.SetDefault("thresholds.load_per_core", 1.0)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Notify defaults
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.min_status", "fail")
	v.SetDefault("notify.timeout", 10*time.Second)
	v.SetDefault("notify.retry.max_retries", 3)
	v.SetDefault("notify.retry.base_delay", 1*time.Second)
}
