// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/chatpack/chatpack/internal/catalog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newComponentsCommand(app *App) *cobra.Command {
	var opts sourceOptions

	cmd := &cobra.Command{
		Use:     "components",
		Aliases: []string{"ls"},
		Short:   "List the available components",
		Example: `  chatpack components
  chatpack components --server http://bots.internal:3000
  chatpack components --local --components-dir ./components`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := app.loadConfig(ctx)
			if err != nil {
				return app.fail(cmd, err)
			}
			src, err := app.openSource(ctx, cfg, opts)
			if err != nil {
				return app.fail(cmd, err)
			}
			comps, err := src.list(ctx)
			if err != nil {
				return app.fail(cmd, src.wrapSourceError("list components", err))
			}

			renderComponents(app.stdout, comps)
			return nil
		},
	}

	addSourceFlags(cmd, &opts)
	return cmd
}

func renderComponents(w io.Writer, comps []catalog.Component) {
	if len(comps) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No components available."))
		return
	}

	rows := make([][]string, 0, len(comps))
	for _, c := range comps {
		rows = append(rows, []string{c.ID.String(), c.Name, c.File, c.Description})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "NAME", "FILE", "DESCRIPTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableIDStyle
			default:
				return tableCellStyle
			}
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("%d components", len(comps))))
}
