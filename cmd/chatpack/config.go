// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/chatpack/chatpack/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `chatpack config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage chatpack configuration",
		Long: `Manage chatpack configuration.

Configuration is read from config.cue in:
  - Linux: ~/.config/chatpack/
  - macOS: ~/Library/Application Support/chatpack/
  - Windows: %APPDATA%\chatpack\
falling back to ./config.cue. CHATPACK_* environment variables override
file values, e.g. CHATPACK_SERVER_PORT=8080.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			path, err := config.ResolvePath(app.loadOptions())
			if err != nil {
				return app.fail(cmd, err)
			}
			showConfig(app.stdout, cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.cfgFile
			if path == "" {
				var err error
				if path, err = config.DefaultPath(app.loadOptions()); err != nil {
					return app.fail(cmd, err)
				}
			}

			created, err := config.CreateDefaultConfig(path)
			if err != nil {
				return app.fail(cmd, err)
			}
			if created {
				fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
			} else {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("•"), CmdStyle.Render(path))
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.loadOptions()
			defaultPath, err := config.DefaultPath(opts)
			if err != nil {
				return app.fail(cmd, err)
			}
			active, err := config.ResolvePath(opts)
			if err != nil {
				return app.fail(cmd, err)
			}
			if active == "" {
				active = "(none, using defaults)"
			}
			fmt.Fprintf(app.stdout, "Config file: %s\n", defaultPath)
			fmt.Fprintf(app.stdout, "Active file: %s\n", active)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	section := func(name string, kv ...string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", keyStyle.Render(name))
		for i := 0; i+1 < len(kv); i += 2 {
			fmt.Fprintf(w, "  %s: %s\n", kv[i], valueStyle.Render(kv[i+1]))
		}
	}

	catalogFile := cfg.Catalog.File
	if catalogFile == "" {
		catalogFile = "(built-in)"
	}

	section("server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port.String(),
		"shutdown_timeout", cfg.Server.ShutdownTimeout.String(),
	)
	section("catalog",
		"components_dir", cfg.Catalog.ComponentsDir,
		"file", catalogFile,
	)
	section("build",
		"compression_level", fmt.Sprint(cfg.Build.CompressionLevel),
		"max_concurrency", fmt.Sprint(cfg.Build.MaxConcurrency),
	)
	section("client",
		"server_url", cfg.Client.ServerURL,
		"timeout", cfg.Client.Timeout.String(),
	)
	section("log",
		"level", cfg.Log.Level.String(),
	)
}
