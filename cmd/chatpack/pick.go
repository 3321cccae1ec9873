// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/chatpack/chatpack/internal/issue"
	"github.com/chatpack/chatpack/internal/picker"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type pickOptions struct {
	sourceOptions
	outputDir string
}

func newPickCommand(app *App) *cobra.Command {
	var opts pickOptions

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose components interactively and build packages",
		Long: `Open a terminal picker over the catalog. Toggle components with space,
clear the selection with c, build it with enter and quit with q. Each build
is saved to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := app.loadConfig(ctx)
			if err != nil {
				return app.fail(cmd, err)
			}
			src, err := app.openSource(ctx, cfg, opts.sourceOptions)
			if err != nil {
				return app.fail(cmd, err)
			}
			comps, err := src.list(ctx)
			if err != nil {
				return app.fail(cmd, src.wrapSourceError("list components", err))
			}

			saved, err := picker.Run(ctx, comps,
				picker.Options{OutputDir: opts.outputDir, Build: src.build},
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(app.stdout),
			)
			if err != nil {
				if errors.Is(err, picker.ErrNoComponents) {
					return app.fail(cmd, issue.NewErrorContext().
						WithOperation("open picker").
						WithResource(src.location).
						WithSuggestion("Add components to the catalog").
						WithIssue(issue.CatalogLoadFailedId).
						Wrap(err).
						BuildError())
				}
				return app.fail(cmd, err)
			}

			reportSaved(app, saved)
			return nil
		},
	}

	addSourceFlags(cmd, &opts.sourceOptions)
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", ".", "directory that receives built packages")
	return cmd
}

func reportSaved(app *App, saved []string) {
	if len(saved) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No packages built."))
		return
	}
	for _, path := range saved {
		fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
	}
}
