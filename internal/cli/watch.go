package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// watchCommand creates the interactive watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var step float64

	cmd := &cobra.Command{
		Use:   "watch [document]",
		Short: "Resize a document's root interactively",
		Long: `Open an interactive view of a document's frames. Arrow keys resize the root
and each resize runs an incremental pass, showing the diff it submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			m, err := NewWatchModel(doc, layout.NewEngine(c.Logger), step)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().Float64Var(&step, "step", 10, "resize step in points")

	return cmd
}
