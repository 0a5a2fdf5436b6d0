package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/utils"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Binarize: BinarizeConfig{
			Threshold: 0,
			Invert:    false,
		},
		Trace: TraceConfig{
			MaxSteps: 0,
		},
		Output: OutputConfig{
			Format:       output.FormatText,
			OverlayColor: "#FF0000",
			StartColor:   "#00FF00",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			OverlayEnabled:  true,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				RequestsPerHour:   1000,
				MaxRequestsPerDay: 10000,
				MaxDataPerDay:     1 << 30,
			},
		},
		Batch: BatchConfig{
			Workers:         max(1, runtime.NumCPU()),
			ContinueOnError: false,
			Recursive:       false,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Output.Format != "" && !output.IsValidFormat(c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(output.Formats, ", "))
	}
	if err := validateColor(c.Output.OverlayColor, "output.overlay_color"); err != nil {
		return err
	}
	if err := validateColor(c.Output.StartColor, "output.start_color"); err != nil {
		return err
	}

	if c.Binarize.Threshold < 0 || c.Binarize.Threshold > 255 {
		return fmt.Errorf("invalid binarize.threshold: %d (must be between 0 and 255)", c.Binarize.Threshold)
	}
	if c.Trace.MaxSteps < 0 {
		return fmt.Errorf("invalid trace.max_steps: %d (must not be negative)", c.Trace.MaxSteps)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must not be negative)", c.Server.ShutdownTimeout)
	}
	rl := c.Server.RateLimit
	if rl.RequestsPerMinute < 0 || rl.RequestsPerHour < 0 || rl.MaxRequestsPerDay < 0 || rl.MaxDataPerDay < 0 {
		return fmt.Errorf("invalid rate limit: limits must not be negative")
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// BinarizeOptions converts the binarize section for the image layer.
func (c *Config) BinarizeOptions() utils.BinarizeOptions {
	return utils.BinarizeOptions{
		Threshold: uint8(min(max(c.Binarize.Threshold, 0), 255)), //nolint:gosec // G115: clamped to a byte
		Invert:    c.Binarize.Invert,
	}
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validateColor accepts an empty string or a #RRGGBB colour.
func validateColor(value, name string) error {
	if value == "" {
		return nil
	}
	if utils.ParseHexColor(value) == nil {
		return fmt.Errorf("invalid %s: %q (must be #RRGGBB)", name, value)
	}
	return nil
}
