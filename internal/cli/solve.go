package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

// solveOpts holds the flags of the solve command.
type solveOpts struct {
	width, height float64
	jsonOut       bool
	output        string
	noCache       bool
	refresh       bool
	persist       bool
	dump          bool
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve [document]",
		Short: "Solve a layout document and print the resulting frames",
		Long: `Solve a layout document (JSON, TOML or YAML) and print every view's frame.

Results are cached by document hash and root size. Use --refresh to recompute,
or --no-cache to bypass the cache entirely.`,
		Example: `  anchorlayout solve card.yaml
  anchorlayout solve card.yaml --width 320 --json
  anchorlayout solve card.toml -o frames.json --persist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", 0, "root width (default: the document's root frame)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "root height (default: the document's root frame)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write frames as JSON to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "save a snapshot to the configured store")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the compiled constraint system")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, w io.Writer, path string, opts solveOpts) error {
	if opts.output != "" {
		if err := errors.ValidatePath(opts.output); err != nil {
			return err
		}
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

	if opts.persist {
		st, err := c.openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close(context.Background())
		runner.Store = st
	}

	prog := newProgress(c.Logger)
	res, err := runner.Solve(ctx, doc, pipeline.Options{
		Width:   opts.width,
		Height:  opts.height,
		Refresh: opts.refresh,
		Persist: opts.persist,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Solved %d views", len(res.Frames)))
	if res.Report != nil {
		c.Logger.Debug(res.Report.Describe())
	}

	if opts.output != "" {
		if err := writeFramesFile(opts.output, res.Frames); err != nil {
			return err
		}
		printSuccess("Frames written")
		printFile(opts.output)
	}

	if opts.dump {
		if err := dumpSystem(ctx, w, runner, doc, opts); err != nil {
			return err
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	writeFrames(w, res.Frames, res.Report, res.CacheInfo.Hit)
	return nil
}

// dumpSystem rebuilds doc at the requested root size, solves it once and
// prints the submitted batch with every solved variable.
func dumpSystem(ctx context.Context, w io.Writer, runner *pipeline.Runner, doc *document.Document, opts solveOpts) error {
	b, err := document.Build(doc)
	if err != nil {
		return err
	}
	b.ResizeRoot(opts.width, opts.height)
	lc := layout.NewCache()
	if _, err := runner.Engine.SolveContext(ctx, b.Root, lc); err != nil {
		return err
	}
	return runner.Engine.Dump(w, b.Root, lc)
}

func writeFramesFile(path string, frames []document.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := document.WriteFrames(frames, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
