package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

type graphOpts struct {
	format string
	output string
	solved bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [document]",
		Short: "Draw a document's view hierarchy and constraints",
		Long: `Draw a document's view hierarchy with its constraints as dashed edges.

The dot format prints Graphviz source; svg renders it. With --solved the
document is solved first and every view is labeled with its frame.`,
		Example: `  anchorlayout graph card.yaml | dot -Tpng > card.png
  anchorlayout graph card.yaml -f svg -o card.svg --solved`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.solved, "solved", false, "solve first and label views with their frames")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, w io.Writer, path string, opts graphOpts) error {
	if opts.output != "" {
		if err := errors.ValidatePath(opts.output); err != nil {
			return err
		}
	}
	doc, err := document.Load(path)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	data, err := runner.Graph(ctx, doc, opts.format, opts.solved)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Graph written")
	printFile(opts.output)
	return nil
}
