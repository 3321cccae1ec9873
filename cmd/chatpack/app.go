// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/internal/client"
	"github.com/chatpack/chatpack/internal/config"
	"github.com/chatpack/chatpack/internal/issue"
	"github.com/chatpack/chatpack/internal/packager"
	"github.com/chatpack/chatpack/internal/server"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. Command handlers receive
	// an App and reach configuration, the catalog and the API through it.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer

		configDir string
		verbose   bool
		cfgFile   string

		// onServe, when set, is called once `serve` is accepting requests.
		onServe func(*server.Server)
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
		// ConfigDir replaces the platform config directory.
		ConfigDir string
	}
)

// NewApp creates an App from deps.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config:    deps.Config,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		configDir: deps.ConfigDir,
	}
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.cfgFile,
		ConfigDirPath:  a.configDir,
	}
}

func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, a.loadOptions())
}

// newLogger returns a logger honoring log.level, raised to debug by --verbose.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level := log.InfoLevel
	if parsed, err := log.ParseLevel(cfg.Log.Level.String()); err == nil {
		level = parsed
	}
	if a.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix:          "chatpack",
		ReportTimestamp: true,
		Level:           level,
	})
}

// loadCatalog returns the catalog file named in the config, or the built-in
// catalog. Component files come from the components directory when one is
// set; otherwise the built-in catalog serves the files shipped in the binary
// and a catalog file resolves against its own directory.
func (a *App) loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	dir := cfg.Catalog.ComponentsDir

	if dir != "" {
		info, err := os.Stat(dir)
		if err == nil && !info.IsDir() {
			err = fmt.Errorf("%s is not a directory", dir)
		}
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("open components directory").
				WithResource(dir).
				WithSuggestion("Pass --components-dir or set catalog.components_dir, or leave both unset for the built-in files").
				WithIssue(issue.ComponentsDirMissingId).
				Wrap(err).
				BuildError()
		}
	}

	var (
		cat    *catalog.Catalog
		err    error
		source = "built-in catalog"
	)
	if cfg.Catalog.File != "" {
		source = cfg.Catalog.File
		cat, err = catalog.LoadFile(cfg.Catalog.File, dir)
	} else {
		cat, err = catalog.Default(dir)
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load catalog").
			WithResource(source).
			WithSuggestion("Check ids, names and file paths in the catalog").
			WithIssue(issue.CatalogLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return cat, nil
}

func (a *App) newBuilder(cat *catalog.Catalog, cfg *config.Config, logger *log.Logger) (*packager.Builder, error) {
	return packager.New(cat,
		packager.WithCompressionLevel(cfg.Build.CompressionLevel),
		packager.WithMaxConcurrency(cfg.Build.MaxConcurrency),
		packager.WithLogger(logger),
	)
}

// newClient returns an API client for serverURL, or client.server_url when
// serverURL is empty.
func (a *App) newClient(cfg *config.Config, serverURL string) (*client.Client, error) {
	if serverURL == "" {
		serverURL = cfg.Client.ServerURL
	}
	c, err := client.New(serverURL, client.Options{Timeout: cfg.Client.Timeout})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("connect to server").
			WithResource(serverURL).
			WithSuggestion("Use a full URL such as http://localhost:3000").
			WithIssue(issue.ServerUnreachableId).
			Wrap(err).
			BuildError()
	}
	return c, nil
}

// fail renders err on stderr and converts it to an *ExitError. With
// --verbose the matching troubleshooting guide is rendered as well.
func (a *App) fail(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, a.verbose))

	var ae *issue.ActionableError
	if a.verbose && errors.As(err, &ae) && ae.Issue != 0 {
		if guide := issue.Get(ae.Issue); guide != nil {
			rendered, renderErr := guide.Render("dark")
			if renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}

	return &ExitError{Code: classifyExitCode(err), Err: err}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors include their suggestions; verbose adds the error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
