package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/internal/server"
	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/pipeline"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// pruneInterval is how often serve removes expired layouts.
const pruneInterval = 24 * time.Hour

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP and interactive sessions over websockets",
		Long: `Serve layouts over HTTP and interactive sessions over websockets.

Documents uploaded with POST / are kept in the configured store and removed
once they have not been opened for store.expiry_days. Clients connecting to
/ws without a layout ID get the default document, or the built-in example.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("origin") {
				c.Config.Server.AllowedOrigins = origins
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "allowed websocket origin (repeatable, default any)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	logger := loggerFromContext(ctx)

	var standard *document.Document
	if c.Config.Document != "" {
		doc, err := document.Load(c.Config.Document)
		if err != nil {
			return err
		}
		standard = doc
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(ch, cache.NewScopedKeyer(nil, "server:"), logger)
	defer runner.Close()

	metrics := server.NewMetrics()
	metrics.Install()

	go pruneLoop(ctx, st, c.Config.Store.Expiry(), pruneInterval, logger)

	srv := server.New(server.Config{
		Addr:           c.Config.Server.Addr,
		Standard:       standard,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
	}, st, runner, metrics, logger)

	printInfo("Listening on %s", StyleValue.Render(c.Config.Server.Addr))
	printDetail("Store: %s · Cache: %s", c.Config.Store.Backend, c.Config.Cache.Backend)
	return srv.ListenAndServe(ctx)
}

// pruneLoop removes layouts older than expiry once at start and then every
// interval until ctx is done.
func pruneLoop(ctx context.Context, st store.Store, expiry, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := st.Prune(ctx, expiry)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("prune layouts failed", "error", err)
		case n > 0:
			logger.Info("pruned layouts", "removed", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
