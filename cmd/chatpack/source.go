// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/internal/client"
	"github.com/chatpack/chatpack/internal/config"
	"github.com/chatpack/chatpack/internal/issue"
	"github.com/chatpack/chatpack/internal/picker"
	"github.com/chatpack/chatpack/pkg/types"

	"github.com/spf13/cobra"
)

// fallbackFilename is used when a build carries no suggested name.
const fallbackFilename = "chatbot-package.zip"

type (
	// sourceOptions selects where components come from: a running server
	// (the default) or the local catalog.
	sourceOptions struct {
		server        string
		local         bool
		componentsDir string
		catalogFile   string
	}

	// componentSource lists and builds components, either through the API or
	// in-process.
	componentSource struct {
		// location is the server URL, the components directory or
		// catalog.BuiltinLocation.
		location string
		list     func(ctx context.Context) ([]catalog.Component, error)
		build    picker.BuildFunc
	}
)

func addSourceFlags(cmd *cobra.Command, opts *sourceOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", "", "API server URL (default from client.server_url)")
	flags.BoolVar(&opts.local, "local", false, "use the local catalog instead of a server")
	flags.StringVar(&opts.componentsDir, "components-dir", "", "components directory for --local (default: the built-in files)")
	flags.StringVar(&opts.catalogFile, "catalog", "", "catalog file for --local (.cue, .yaml, .toml, .json)")
	cmd.MarkFlagsMutuallyExclusive("server", "local")
}

// applyCatalogFlags overrides the catalog settings in cfg with any non-empty flag.
func applyCatalogFlags(cfg *config.Config, componentsDir, catalogFile string) {
	if componentsDir != "" {
		cfg.Catalog.ComponentsDir = componentsDir
	}
	if catalogFile != "" {
		cfg.Catalog.File = catalogFile
	}
}

// openSource returns the local catalog, or a client for a server that has
// answered its health check.
func (a *App) openSource(ctx context.Context, cfg *config.Config, opts sourceOptions) (*componentSource, error) {
	if opts.local {
		applyCatalogFlags(cfg, opts.componentsDir, opts.catalogFile)
		cat, err := a.loadCatalog(cfg)
		if err != nil {
			return nil, err
		}
		builder, err := a.newBuilder(cat, cfg, a.newLogger(cfg))
		if err != nil {
			return nil, err
		}
		return &componentSource{
			location: cat.Dir(),
			list: func(context.Context) ([]catalog.Component, error) {
				return cat.List(), nil
			},
			build: func(ctx context.Context, ids []types.ComponentID) (*picker.Result, error) {
				archive, err := builder.Build(ctx, ids)
				if err != nil {
					return nil, err
				}
				return &picker.Result{Filename: archive.Filename, BuildID: archive.ID, Data: archive.Data}, nil
			},
		}, nil
	}

	c, err := a.newClient(cfg, opts.server)
	if err != nil {
		return nil, err
	}
	src := &componentSource{
		location: c.BaseURL(),
		list:     c.ListComponents,
		build: func(ctx context.Context, ids []types.ComponentID) (*picker.Result, error) {
			res, err := c.Build(ctx, ids)
			if err != nil {
				return nil, err
			}
			return &picker.Result{Filename: res.Filename, BuildID: res.BuildID, Data: res.Data}, nil
		},
	}
	if err := c.Health(ctx); err != nil {
		// Something answered, but it is not a healthy chatpack server.
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			err = fmt.Errorf("%w: %w", client.ErrUnreachable, err)
		}
		return nil, src.wrapSourceError("reach server", err)
	}
	return src, nil
}

// wrapSourceError attaches guidance to a failed list or build call.
func (s *componentSource) wrapSourceError(operation string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	ec := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(s.location).
		Wrap(err)

	if errors.Is(err, client.ErrUnreachable) {
		return ec.
			WithSuggestion("Start a server with 'chatpack serve'").
			WithSuggestion("Or work without a server using --local").
			WithIssue(issue.ServerUnreachableId).
			BuildError()
	}
	if classifyExitCode(err) == types.ExitUsage {
		ec = ec.WithSuggestion("Run 'chatpack components' to list the valid ids")
	}
	return ec.WithIssue(issue.BuildFailedId).BuildError()
}

// outputPath decides where an archive named filename is written. An empty
// output means the working directory; an existing directory, or a path
// ending in a separator, receives the file under its own name; anything else
// is the file path itself.
func outputPath(output, filename string) string {
	if filename == "" {
		filename = fallbackFilename
	}
	if output == "" {
		return filename
	}
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(os.PathSeparator)) {
		return filepath.Join(output, filename)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filename)
	}
	return output
}

// saveArchive writes res according to output and returns the path written.
func saveArchive(output string, res *picker.Result) (string, error) {
	path := outputPath(output, res.Filename)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", saveError(path, err)
		}
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return "", saveError(path, err)
	}
	return path, nil
}

func saveError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("save archive").
		WithResource(path).
		WithSuggestion("Choose a writable location with -o").
		WithIssue(issue.OutputWriteFailedId).
		Wrap(fmt.Errorf("write archive: %w", err)).
		BuildError()
}
