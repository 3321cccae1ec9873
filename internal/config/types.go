// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chatpack/chatpack/internal/packager"
	"github.com/chatpack/chatpack/pkg/types"
)

const (
	// LogLevelDebug includes per-build diagnostics.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs requests and lifecycle events.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs failed builds and recoverable problems.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is the sentinel error wrapped by InvalidLogLevelError.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is a logger threshold name.
	LogLevel string

	// InvalidLogLevelError is returned for an unrecognized LogLevel.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects every field error found by Config.Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Server  ServerConfig  `json:"server" mapstructure:"server"`
		Catalog CatalogConfig `json:"catalog" mapstructure:"catalog"`
		Build   BuildConfig   `json:"build" mapstructure:"build"`
		Client  ClientConfig  `json:"client" mapstructure:"client"`
		Log     LogConfig     `json:"log" mapstructure:"log"`
	}

	// ServerConfig configures `chatpack serve`.
	ServerConfig struct {
		Host            string           `json:"host" mapstructure:"host"`
		Port            types.ListenPort `json:"port" mapstructure:"port"`
		ShutdownTimeout time.Duration    `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	}

	// CatalogConfig locates the component catalog.
	CatalogConfig struct {
		// ComponentsDir holds the component source files. Empty means the
		// files shipped with the binary, or the catalog file's directory
		// when File is set.
		ComponentsDir string `json:"components_dir" mapstructure:"components_dir"`
		// File is an optional catalog definition (.cue, .yaml, .toml, .json).
		// Empty means the built-in catalog.
		File string `json:"file" mapstructure:"file"`
	}

	// BuildConfig tunes the package builder.
	BuildConfig struct {
		CompressionLevel int `json:"compression_level" mapstructure:"compression_level"`
		// MaxConcurrency bounds parallel file reads per build; 0 means GOMAXPROCS.
		MaxConcurrency int `json:"max_concurrency" mapstructure:"max_concurrency"`
	}

	// ClientConfig configures commands that talk to a running server.
	ClientConfig struct {
		ServerURL string        `json:"server_url" mapstructure:"server_url"`
		Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			ComponentsDir: "",
		},
		Build: BuildConfig{
			CompressionLevel: packager.DefaultCompressionLevel,
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:3000",
			Timeout:   60 * time.Second,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
	}
}

// String returns the level name.
func (l LogLevel) String() string { return string(l) }

// Validate returns an *InvalidLogLevelError for unknown names.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks values the schema cannot see, such as those set through
// environment variables.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Port.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server.port: %w", err))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout: must not be negative, got %s", c.Server.ShutdownTimeout))
	}
	if c.Catalog.ComponentsDir != "" && strings.TrimSpace(c.Catalog.ComponentsDir) == "" {
		errs = append(errs, errors.New("catalog.components_dir: must not be blank (leave it empty for the built-in files)"))
	}
	if err := packager.ValidateCompressionLevel(c.Build.CompressionLevel); err != nil {
		errs = append(errs, fmt.Errorf("build.compression_level: %w: %d", err, c.Build.CompressionLevel))
	}
	if c.Build.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("build.max_concurrency: must not be negative, got %d", c.Build.MaxConcurrency))
	}
	if u, err := url.Parse(c.Client.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("client.server_url: %q is not an http(s) URL", c.Client.ServerURL))
	}
	if c.Client.Timeout < 0 {
		errs = append(errs, fmt.Errorf("client.timeout: must not be negative, got %s", c.Client.Timeout))
	}
	if err := c.Log.Level.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
