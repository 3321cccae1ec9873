// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chatpack/chatpack/internal/issue"
	"github.com/chatpack/chatpack/internal/testutil"
)

// isolated returns LoadOptions that never touch the real user config or the
// process working directory.
func isolated(t *testing.T) (LoadOptions, string) {
	t.Helper()
	dir := t.TempDir()
	return LoadOptions{
		ConfigDirPath: filepath.Join(dir, "cfg"),
		WorkDir:       filepath.Join(dir, "work"),
	}, dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}

	want := DefaultConfig()
	if *cfg != *want {
		t.Errorf("config = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Parallel()

	opts, dir := isolated(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"cfg/config.cue": `
server: {
	port: 8080
	shutdown_timeout: "1m30s"
}
build: compression_level: 1
log: level: "debug"
`,
	})

	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if want := filepath.Join(dir, "cfg", "config.cue"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 90*time.Second {
		t.Errorf("Server.ShutdownTimeout = %s, want 1m30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Build.CompressionLevel != 1 {
		t.Errorf("Build.CompressionLevel = %d, want 1", cfg.Build.CompressionLevel)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
	if cfg.Catalog.ComponentsDir != "" {
		t.Errorf("Catalog.ComponentsDir = %q, want empty default", cfg.Catalog.ComponentsDir)
	}
}

func TestLoad_WorkDirFallback(t *testing.T) {
	t.Parallel()

	opts, dir := isolated(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"work/config.cue": `catalog: components_dir: "bots"`,
	})

	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if want := filepath.Join(dir, "work", "config.cue"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.Catalog.ComponentsDir != "bots" {
		t.Errorf("Catalog.ComponentsDir = %q, want bots", cfg.Catalog.ComponentsDir)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	opts, dir := isolated(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"cfg/config.cue":  `server: port: 1111`,
		"custom/chat.cue": `server: port: 2222`,
	})
	opts.ConfigFilePath = filepath.Join(dir, "custom", "chat.cue")

	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != opts.ConfigFilePath {
		t.Errorf("path = %q, want %q", path, opts.ConfigFilePath)
	}
	if cfg.Server.Port != 2222 {
		t.Errorf("Server.Port = %d, want 2222", cfg.Server.Port)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "port out of range", content: `server: port: 70000`, wantMsg: "port"},
		{name: "unknown field", content: `bogus: true`, wantMsg: "bogus"},
		{name: "bad log level", content: `log: level: "trace"`, wantMsg: "level"},
		{name: "bad duration", content: `client: timeout: "soon"`, wantMsg: "timeout"},
		{name: "bad url", content: `client: server_url: "ftp://x"`, wantMsg: "server_url"},
		{name: "syntax error", content: `server: {`, wantMsg: "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts, dir := isolated(t)
			testutil.WriteFiles(t, dir, map[string]string{"cfg/config.cue": tt.content})

			_, _, err := loadWithOptions(t.Context(), opts)
			if err == nil {
				t.Fatal("expected error")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error = %T, want *issue.ActionableError", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("Issue = %v, want ConfigLoadFailedId", ae.Issue)
			}
			if !strings.Contains(ae.Format(true), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", ae.Format(true), tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	opts, dir := isolated(t)
	opts.ConfigFilePath = filepath.Join(dir, "nope.cue")

	_, _, err := loadWithOptions(t.Context(), opts)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, _, err := loadWithOptions(ctx, opts); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

// Not parallel: mutates the process environment.
func TestLoad_EnvOverride(t *testing.T) {
	opts, dir := isolated(t)
	testutil.WriteFiles(t, dir, map[string]string{"cfg/config.cue": `server: port: 8080`})

	defer testutil.MustSetenv(t, "CHATPACK_SERVER_PORT", "9090")()
	defer testutil.MustSetenv(t, "CHATPACK_LOG_LEVEL", "warn")()

	cfg, _, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 from env", cfg.Server.Port)
	}
	if cfg.Log.Level != LogLevelWarn {
		t.Errorf("Log.Level = %q, want warn from env", cfg.Log.Level)
	}
}

// Not parallel: mutates the process environment.
func TestLoad_EnvOverrideValidated(t *testing.T) {
	opts, _ := isolated(t)
	defer testutil.MustSetenv(t, "CHATPACK_BUILD_COMPRESSION_LEVEL", "12")()

	_, _, err := loadWithOptions(t.Context(), opts)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Server.Port = 4321
	cfg.Server.ShutdownTimeout = 2 * time.Minute
	cfg.Catalog.File = "bots.yaml"
	cfg.Build.MaxConcurrency = 3
	cfg.Client.Timeout = 1500 * time.Millisecond
	cfg.Log.Level = LogLevelError

	opts, _ := isolated(t)
	path, err := DefaultPath(opts)
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")

	created, err := CreateDefaultConfig(path)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}

	if err := os.WriteFile(path, []byte("server: port: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	created, err = CreateDefaultConfig(path)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() second call error = %v", err)
	}
	if created {
		t.Error("second call should leave the existing file alone")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "server: port: 1\n" {
		t.Errorf("existing file was overwritten: %q", data)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{10 * time.Second, "10s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m30s"},
		{time.Hour, "1h"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := formatDuration(tt.in); got != tt.want {
				t.Errorf("formatDuration(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port", func(c *Config) { c.Server.Port = -1 }, "server.port"},
		{"shutdown", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, "server.shutdown_timeout"},
		{"blank components dir", func(c *Config) { c.Catalog.ComponentsDir = " " }, "catalog.components_dir"},
		{"compression", func(c *Config) { c.Build.CompressionLevel = 11 }, "build.compression_level"},
		{"concurrency", func(c *Config) { c.Build.MaxConcurrency = -2 }, "build.max_concurrency"},
		{"server url", func(c *Config) { c.Client.ServerURL = "localhost:3000" }, "client.server_url"},
		{"client timeout", func(c *Config) { c.Client.Timeout = -time.Second }, "client.timeout"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			var ice *InvalidConfigError
			if !errors.As(err, &ice) {
				t.Fatalf("Validate() = %v, want *InvalidConfigError", err)
			}
			if len(ice.FieldErrors) != 1 {
				t.Fatalf("FieldErrors = %v, want exactly one", ice.FieldErrors)
			}
			if !strings.HasPrefix(ice.FieldErrors[0].Error(), tt.field+":") {
				t.Errorf("field error %q, want prefix %q", ice.FieldErrors[0], tt.field)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLogLevelValidate(t *testing.T) {
	t.Parallel()

	err := LogLevel("verbose").Validate()
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("Validate() = %v, want ErrInvalidLogLevel", err)
	}
	if !strings.Contains(err.Error(), `"verbose"`) {
		t.Errorf("error %q should quote the value", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	opts, dir := isolated(t)
	if p, err := ResolvePath(opts); err != nil || p != "" {
		t.Fatalf("ResolvePath() = %q, %v; want empty", p, err)
	}

	testutil.WriteFiles(t, dir, map[string]string{"work/config.cue": ""})
	if p, _ := ResolvePath(opts); p != filepath.Join(dir, "work", "config.cue") {
		t.Errorf("ResolvePath() = %q, want work dir file", p)
	}

	testutil.WriteFiles(t, dir, map[string]string{"cfg/config.cue": ""})
	if p, _ := ResolvePath(opts); p != filepath.Join(dir, "cfg", "config.cue") {
		t.Errorf("ResolvePath() = %q, want config dir file to win", p)
	}
}

func TestProviderLoad(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	cfg, err := NewProvider().Load(t.Context(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
}

// Not parallel: mutates the process environment.
func TestConfigDir(t *testing.T) {
	home := t.TempDir()
	defer testutil.SetConfigHome(t, home)()

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Errorf("ConfigDir() = %q, want it under %q", got, home)
	}
	if filepath.Base(got) != AppName {
		t.Errorf("ConfigDir() = %q, want it to end in %q", got, AppName)
	}

	path, err := DefaultPath(LoadOptions{})
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if want := filepath.Join(got, "config.cue"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}
