// Package config provides configuration management for the diagnostics tool.
package config

import "time"

// Config is the root configuration structure for the diagnostics tool.
type Config struct {
	SSH        SSHConfig        `mapstructure:"ssh"`
	Inspection InspectionConfig `mapstructure:"inspection"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Report     ReportConfig     `mapstructure:"report"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

// SSHConfig contains settings for the remote session transport.
type SSHConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"` // TCP + handshake deadline
	CommandTimeout time.Duration `mapstructure:"command_timeout"` // per remote command
	KeyPath        string        `mapstructure:"key_path"`        // local keypair used when a profile names none
	KeyComment     string        `mapstructure:"key_comment"`     // comment on generated public keys
}

// InspectionConfig contains settings for diagnostic execution.
type InspectionConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=64"` // parallel host workers
}

// ThresholdsConfig contains the status classification bands.
type ThresholdsConfig struct {
	Usage       ThresholdPair `mapstructure:"usage"`                         // memory and disk percent bands
	LoadPerCore float64       `mapstructure:"load_per_core" validate:"gt=0"` // warn when load/cores reaches this
}

// ThresholdPair defines warn and fail percentage thresholds.
// A value below Warning is ok, from Warning up to Critical is warn,
// and from Critical upward is fail.
type ThresholdPair struct {
	Warning  float64 `mapstructure:"warning" validate:"gte=0,lte=100"`
	Critical float64 `mapstructure:"critical" validate:"gte=0,lte=100"`
}

// ReportConfig contains settings for report and bundle output.
type ReportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`                          // per-host bundles live below this
	Formats   []string `mapstructure:"formats" validate:"dive,oneof=excel"` // extra fleet-level report formats
}

// LoggingConfig contains settings for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// NotifyConfig contains settings for the support-desk webhook.
type NotifyConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	WebhookURL string        `mapstructure:"webhook_url" validate:"omitempty,url"`
	MinStatus  string        `mapstructure:"min_status" validate:"oneof=warn fail"` // lowest status that triggers a post
	Timeout    time.Duration `mapstructure:"timeout"`
	Retry      RetryConfig   `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for webhook requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}
