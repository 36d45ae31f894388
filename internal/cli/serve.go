package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/observability/metrics"
	"github.com/matzehuels/anchorlayout/pkg/server"
	"github.com/matzehuels/anchorlayout/pkg/session"
)

type serveOpts struct {
	addr       string
	sessionDir string
	noCache    bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP service",
		Long: `Run the layout HTTP service.

Stateless solves go through the configured result cache. Sessions keep a
document and its diff cache alive so that resizes are solved incrementally;
they are recorded on disk and restored after a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.sessionDir, "session-dir", "", "session record directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.sessionDir != "" {
		cfg.Server.SessionDir = opts.sessionDir
	}

	metrics.New(prometheus.DefaultRegisterer).Install()

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())
	runner.Store = st

	records, err := session.NewFileStore(cfg.Server.SessionDir)
	if err != nil {
		return err
	}

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"sessions", records.Path(),
		"session_ttl", cfg.Server.SessionTTL.Duration)

	srv := server.New(server.Options{
		Logger:     c.Logger,
		Runner:     runner,
		Records:    records,
		SessionTTL: cfg.Server.SessionTTL.Duration,
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
