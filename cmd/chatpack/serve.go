// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/chatpack/chatpack/internal/issue"
	"github.com/chatpack/chatpack/internal/server"
	"github.com/chatpack/chatpack/pkg/types"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	host          string
	port          int
	componentsDir string
	catalogFile   string
}

func newServeCommand(app *App) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the package builder API and web UI",
		Long: `Run the package builder API and web UI until interrupted.

The server lists the catalog at /api/components, builds archives at
/api/build and serves the browser UI at /.`,
		Example: `  chatpack serve
  chatpack serve --port 8080 --components-dir ./components
  chatpack serve --catalog bots.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.runServe(cmd, opts); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.host, "host", "", "listen host (default from server.host)")
	flags.IntVar(&opts.port, "port", 0, "listen port, 0 picks a free port (default from server.port)")
	flags.StringVar(&opts.componentsDir, "components-dir", "", "directory holding component files (default: the built-in files)")
	flags.StringVar(&opts.catalogFile, "catalog", "", "catalog file (.cue, .yaml, .toml, .json)")

	return cmd
}

// runServe starts the server and blocks until the command context is done
// or the serve loop fails, then drains in-flight requests.
func (a *App) runServe(cmd *cobra.Command, opts serveOptions) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = types.ListenPort(opts.port)
	}
	applyCatalogFlags(cfg, opts.componentsDir, opts.catalogFile)

	logger := a.newLogger(cfg)
	cat, err := a.loadCatalog(cfg)
	if err != nil {
		return err
	}
	builder, err := a.newBuilder(cat, cfg, logger)
	if err != nil {
		return err
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	srvCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout

	srv := server.New(srvCfg, cat, builder, server.WithLogger(logger))
	if err := srv.Start(ctx); err != nil {
		return issue.NewErrorContext().
			WithOperation("start server").
			WithResource(srvCfg.Addr()).
			WithSuggestion("Pick another port with --port").
			WithSuggestion("Check that no other server is listening on this address").
			WithIssue(issue.ServerStartFailedId).
			Wrap(err).
			BuildError()
	}

	fmt.Fprintf(a.stdout, "%s %s %s\n",
		SuccessStyle.Render("✓"),
		TitleStyle.Render("Serving"),
		CmdStyle.Render(srv.URL()),
	)
	fmt.Fprintln(a.stdout, SubtitleStyle.Render(fmt.Sprintf("%d components from %s, press Ctrl+C to stop", cat.Len(), cat.Dir())))

	if a.onServe != nil {
		a.onServe(srv)
	}

	return waitAndStop(ctx, srv)
}

func waitAndStop(ctx context.Context, srv *server.Server) error {
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-srv.Err():
	}

	stopErr := srv.Stop()
	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	return stopErr
}
