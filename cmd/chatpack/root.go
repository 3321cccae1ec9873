// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/chatpack/chatpack/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chatpack",
		Short: "Assemble chatbot packages from a component catalog",
		Long: TitleStyle.Render("chatpack") + SubtitleStyle.Render(" - assemble chatbot packages from a component catalog") + `

chatpack serves a catalog of chatbot components over HTTP, together with a
browser UI for picking them, and builds zip packages from any selection.

` + SubtitleStyle.Render("Examples:") + `
  chatpack serve              Run the API and web UI on :3000
  chatpack components         List the catalog of a running server
  chatpack build 1 3 -o out/  Build a package with components 1 and 3
  chatpack pick               Choose components in the terminal
  chatpack config show        Show current configuration`,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $HOME/.config/chatpack/config.cue)")

	rootCmd.AddCommand(
		newServeCommand(app),
		newComponentsCommand(app),
		newBuildCommand(app),
		newPickCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the command's exit code.
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}
