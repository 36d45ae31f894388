package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

type fitOpts struct {
	width, height        float64
	horizontal, vertical string
	jsonOut              bool
	noCache              bool
}

// fitCommand creates the fit command.
func (c *CLI) fitCommand() *cobra.Command {
	var opts fitOpts

	cmd := &cobra.Command{
		Use:   "fit [document]",
		Short: "Compute the size a document's root takes for a target size",
		Long: `Compute the smallest (or largest) size the root can take while honoring its
content, pulling it towards a target size at the given fitting priorities.

Priorities accept a number or a tier name: required, high, medium, low,
very_low, lowest. A target of 0 with the default priority yields the
compressed size.`,
		Example: `  anchorlayout fit card.yaml
  anchorlayout fit card.yaml --width 320 --horizontal required --vertical low`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFit(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", 0, "target width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "target height")
	cmd.Flags().StringVar(&opts.horizontal, "horizontal", "", "horizontal fitting priority (default 50)")
	cmd.Flags().StringVar(&opts.vertical, "vertical", "", "vertical fitting priority (default 50)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the size as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFit(ctx context.Context, w io.Writer, path string, opts fitOpts) error {
	fo := pipeline.FitOptions{Width: opts.width, Height: opts.height}
	var err error
	if fo.Horizontal, err = flagPriority(opts.horizontal); err != nil {
		return err
	}
	if fo.Vertical, err = flagPriority(opts.vertical); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	doc, err := document.Load(path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	size, cached, err := runner.Fit(ctx, doc, fo)
	if err != nil {
		return err
	}
	c.Logger.Debug("fitted", "width", size.Width, "height", size.Height, "cached", cached)

	if opts.jsonOut {
		return json.NewEncoder(w).Encode(size)
	}
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(doc.Root.Name), StyleNumber.Render(formatNum(size.Width)+" × "+formatNum(size.Height)))
	return nil
}

// flagPriority parses a priority flag; an empty flag leaves the default.
func flagPriority(s string) (layout.Priority, error) {
	if s == "" {
		return 0, nil
	}
	return layout.ParsePriority(s)
}
