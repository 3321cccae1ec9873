// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chatpack/chatpack/internal/issue"
	"github.com/chatpack/chatpack/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName names the config directory.
	AppName = "chatpack"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides: server.port -> CHATPACK_SERVER_PORT.
	EnvPrefix = "CHATPACK"

	schemaDefinition = "#Config"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the platform config directory for chatpack: %APPDATA% on
// Windows, ~/Library/Application Support on macOS, $XDG_CONFIG_HOME (or
// ~/.config) elsewhere.
func ConfigDir() (string, error) {
	var base string

	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, AppName), nil
}

// DefaultPath returns where `config init` writes the config file.
func DefaultPath(opts LoadOptions) (string, error) {
	dir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// ResolvePath returns the config file Load would read, or "" when none exists
// and only defaults apply. An explicit ConfigFilePath is returned unchecked.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}

	userPath, err := DefaultPath(opts)
	if err != nil {
		return "", err
	}
	if fileExists(userPath) {
		return userPath, nil
	}

	localPath := ConfigFileName + "." + ConfigFileExt
	if opts.WorkDir != "" {
		localPath = filepath.Join(opts.WorkDir, localPath)
	}
	if fileExists(localPath) {
		return localPath, nil
	}
	return "", nil
}

// loadWithOptions returns the layered config and the file it came from.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := newViper()

	if opts.ConfigFilePath != "" && !fileExists(opts.ConfigFilePath) {
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Run 'chatpack config init' to create a config file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %w", fs.ErrNotExist)).
			BuildError()
	}

	path, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'chatpack config show' to compare against the defaults").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		resource := path
		if resource == "" {
			resource = "environment"
		}
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resource).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables as well as the config file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, path, nil
}

// newViper returns a Viper with every default registered, so that
// AutomaticEnv can override any key.
func newViper() *viper.Viper {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", int(d.Server.Port))
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("catalog.components_dir", d.Catalog.ComponentsDir)
	v.SetDefault("catalog.file", d.Catalog.File)
	v.SetDefault("build.compression_level", d.Build.CompressionLevel)
	v.SetDefault("build.max_concurrency", d.Build.MaxConcurrency)
	v.SetDefault("client.server_url", d.Client.ServerURL)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("log.level", string(d.Log.Level))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func configDirWithOverride(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates path against #Config and merges it into v. It
// decodes into a map rather than a struct so that Viper keeps ownership of
// defaults and env overrides.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, data, schemaDefinition,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	var values map[string]any
	if err := unified.Decode(&values); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the defaults to path unless a file is already
// there. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}
	if err := Save(DefaultConfig(), path); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes cfg to path as CUE, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg in the config file format.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// chatpack configuration\n")
	sb.WriteString("// Any field may be removed to fall back to its default.\n\n")

	sb.WriteString("server: {\n")
	fmt.Fprintf(&sb, "\thost:             %q\n", cfg.Server.Host)
	fmt.Fprintf(&sb, "\tport:             %d\n", cfg.Server.Port)
	fmt.Fprintf(&sb, "\tshutdown_timeout: %q\n", formatDuration(cfg.Server.ShutdownTimeout))
	sb.WriteString("}\n")

	sb.WriteString("\ncatalog: {\n")
	if cfg.Catalog.ComponentsDir != "" {
		fmt.Fprintf(&sb, "\tcomponents_dir: %q\n", cfg.Catalog.ComponentsDir)
	}
	if cfg.Catalog.File != "" {
		fmt.Fprintf(&sb, "\tfile:           %q\n", cfg.Catalog.File)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nbuild: {\n")
	fmt.Fprintf(&sb, "\tcompression_level: %d\n", cfg.Build.CompressionLevel)
	fmt.Fprintf(&sb, "\tmax_concurrency:   %d\n", cfg.Build.MaxConcurrency)
	sb.WriteString("}\n")

	sb.WriteString("\nclient: {\n")
	fmt.Fprintf(&sb, "\tserver_url: %q\n", cfg.Client.ServerURL)
	fmt.Fprintf(&sb, "\ttimeout:    %q\n", formatDuration(cfg.Client.Timeout))
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	sb.WriteString("}\n")

	return sb.String()
}

// formatDuration drops the zero units time.Duration.String adds ("1m0s" -> "1m").
func formatDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
