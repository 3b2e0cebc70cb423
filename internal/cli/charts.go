package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crimescope/pkg/catalog"
)

// chartsCommand creates the charts command, which lists the catalog.
func (c *CLI) chartsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "List the available charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(chartsTable(catalog.Default()))
			printNextStep("Render one", "crimescope render q1 -f svg,json")
			return nil
		},
	}
}

// chartsTable renders the catalog as a table of IDs, titles, modes and
// controls.
func chartsTable(cat *catalog.Catalog) string {
	var rows [][]string
	for _, d := range cat.List() {
		modes := make([]string, 0, len(d.Modes))
		for _, m := range d.Modes {
			modes = append(modes, m.Value)
		}
		controls := make([]string, 0, len(d.Controls))
		for _, ctl := range d.Controls {
			controls = append(controls, string(ctl))
		}
		rows = append(rows, []string{d.ID, d.Title, orDash(strings.Join(modes, ", ")), orDash(strings.Join(controls, ", "))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	idStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Chart", "Title", "Modes", "Controls").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return idStyle
			case col >= 2:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
