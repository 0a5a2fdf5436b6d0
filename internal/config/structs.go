//nolint:lll
package config

// Config represents the complete configuration for the moore contour tracer.
// It covers every command (trace, grid, batch, serve) and is loaded from
// configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Image to grid conversion
	Binarize BinarizeConfig `mapstructure:"binarize" yaml:"binarize" json:"binarize"`

	// Tracer settings
	Trace TraceConfig `mapstructure:"trace" yaml:"trace" json:"trace"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// BinarizeConfig controls how decoded images become binary grids.
type BinarizeConfig struct {
	Threshold int  `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Invert    bool `mapstructure:"invert" yaml:"invert" json:"invert"`
}

// TraceConfig contains tracer settings. A MaxSteps of zero derives the
// budget from the grid size.
type TraceConfig struct {
	MaxSteps int `mapstructure:"max_steps" yaml:"max_steps" json:"max_steps"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	File         string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir   string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	OverlayColor string `mapstructure:"overlay_color" yaml:"overlay_color" json:"overlay_color"`
	StartColor   string `mapstructure:"start_color" yaml:"start_color" json:"start_color"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string          `mapstructure:"host" yaml:"host" json:"host"`
	Port            int             `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string          `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int             `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int             `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int             `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayEnabled  bool            `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains per-client request limits. Zero disables a limit.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}
