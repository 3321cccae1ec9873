// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/chatpack/chatpack/pkg/types"

	"github.com/spf13/cobra"
)

type buildOptions struct {
	sourceOptions
	output string
}

func newBuildCommand(app *App) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <id>...",
		Short: "Build a package from component ids and save it",
		Long: `Build a zip package containing the given components, in the order given,
and save it. By default the server builds it; --local builds in-process.`,
		Example: `  chatpack build 1 3
  chatpack build 1 2 5 -o dist/
  chatpack build 4 --local -o bot.zip`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := types.ParseComponentIDs(args)
			if err != nil {
				return app.fail(cmd, err)
			}

			ctx := cmd.Context()
			cfg, err := app.loadConfig(ctx)
			if err != nil {
				return app.fail(cmd, err)
			}
			src, err := app.openSource(ctx, cfg, opts.sourceOptions)
			if err != nil {
				return app.fail(cmd, err)
			}

			res, err := src.build(ctx, ids)
			if err != nil {
				return app.fail(cmd, src.wrapSourceError("build package", err))
			}

			path, err := saveArchive(opts.output, res)
			if err != nil {
				return app.fail(cmd, err)
			}

			fmt.Fprintf(app.stdout, "%s Saved %s %s\n",
				SuccessStyle.Render("✓"),
				CmdStyle.Render(path),
				SubtitleStyle.Render(fmt.Sprintf("(%d bytes, %d components, build %s)", len(res.Data), len(ids), res.BuildID)),
			)
			return nil
		},
	}

	addSourceFlags(cmd, &opts.sourceOptions)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory or file (default: server-suggested name in the current directory)")
	return cmd
}

