package config

import (
	"fmt"
	"slices"
	"strings"
)

// TrialLicenseKey is the public trial key the engine vendor publishes for evaluation.
// Production deployments override it with --license or POBAR_LICENSE_KEY.
const TrialLicenseKey = "DLS2eyJoYW5kc2hha2VDb2RlIjoiMjAwMDAxLTE2NDk4Mjk3OTI2MzUiLCJvcmdhbml6YXRpb25JRCI6IjIwMDAwMSIsInNlc3Npb25QYXNzd29yZCI6IndTcGR6Vm05WDJrcEQ5YUoifQ=="

// Output formats understood by the report package.
var validFormats = []string{"text", "json", "csv", "yaml"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config represents the complete configuration for pobar.
// It is loaded from configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LicenseKey string `mapstructure:"license_key" yaml:"license_key" json:"license_key"`
	// SDKRoot is used by pobar-build; empty resolves through sdk.GetRoot.
	SDKRoot  string `mapstructure:"sdk_root" yaml:"sdk_root" json:"sdk_root"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Batch   BatchConfig   `mapstructure:"batch" yaml:"batch" json:"batch"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// OutputConfig contains result formatting settings.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	File         string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir   string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	OverlayColor string `mapstructure:"overlay_color" yaml:"overlay_color" json:"overlay_color"`
}

// BatchConfig controls how file and directory arguments are expanded.
type BatchConfig struct {
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	ShowStats       bool     `mapstructure:"show_stats" yaml:"show_stats" json:"show_stats"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path" json:"textfile_path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LicenseKey: TrialLicenseKey,
		LogLevel:   "info",
		Output: OutputConfig{
			Format:       "text",
			OverlayColor: "#FF0000",
		},
		Batch: BatchConfig{
			Recursive:       true,
			ShowStats:       true,
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}
	if strings.TrimSpace(c.LicenseKey) == "" {
		return fmt.Errorf("license key must not be empty")
	}
	if c.Output.OverlayColor != "" {
		if err := validateHexColor(c.Output.OverlayColor); err != nil {
			return fmt.Errorf("invalid overlay color: %w", err)
		}
	}
	return nil
}

// validateHexColor accepts #RGB and #RRGGBB.
func validateHexColor(s string) error {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 3 && len(h) != 6 {
		return fmt.Errorf("%q must be #RGB or #RRGGBB", s)
	}
	for _, r := range h {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return fmt.Errorf("%q is not hexadecimal", s)
		}
	}
	return nil
}
