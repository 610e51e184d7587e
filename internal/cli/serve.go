package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/papersync/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		allowAll bool
		overlay  bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve [document]",
		Short: "Serve synchronized viewing sessions over HTTP",
		Long: `Serve one document over HTTP. Each client creates a session, posts scroll
offsets and receives frames; /sessions/{id}/ws streams them over a
WebSocket.

Pages load in the background; sessions created before loading finishes
answer 503 until the first frame can be drawn.`,
		Example:           `  papersync serve paper.json --addr :8080`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			l, err := c.openDocument(ctx, args[0], noCache, false)
			if err != nil {
				return err
			}
			defer l.Close()
			go func() {
				if err := l.set.Wait(ctx); err == nil {
					logger.Info("pages ready", "loaded", l.set.Loaded(), "pages", l.set.Len())
				}
			}()

			cfg := server.DefaultConfig()
			cfg.Addr = c.Config.Server.Addr
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			cfg.AllowAll = c.Config.Server.AllowAll || allowAll
			cfg.AllowedOrigins = c.Config.Server.AllowedOrigins
			cfg.SessionTTL = c.Config.Server.SessionTTL
			cfg.MaxSessions = c.Config.Server.MaxSessions
			cfg.Width = c.Config.Viewer.Width
			cfg.Height = c.Config.Viewer.Height
			cfg.TextHeight = c.Config.Viewer.TextHeight
			cfg.Overlay = c.Config.Viewer.Overlay || overlay

			srv := server.New(cfg, l.doc, l.set, componentLogger(ctx, "server"))
			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&allowAll, "allow-all-origins", false, "allow CORS requests from any origin")
	cmd.Flags().BoolVar(&overlay, "overlay", false, "draw position and transform onto frames")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the page cache")

	return cmd
}
