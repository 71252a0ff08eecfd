package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svgcrop/pkg/buildinfo"
	"github.com/matzehuels/svgcrop/pkg/config"
	"github.com/matzehuels/svgcrop/pkg/render/chrome"
	"github.com/matzehuels/svgcrop/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		renderer rendererFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the crop API over HTTP",
		Long: `Serve starts a browser that stays up for the lifetime of the server and
answers POST /v1/crop requests with it. The browser is closed on SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			renderer.apply(cmd, &cfg.Renderer)
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if noCache {
				cfg.Cache.Backend = config.BackendNone
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	renderer.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	r, err := c.newRenderer(cfg.Renderer)
	if err != nil {
		return err
	}
	if closer, ok := r.(io.Closer); ok {
		defer closer.Close()
	}

	// A local browser is started once and reused by every request.
	if cr, ok := r.(*chrome.Renderer); ok && cfg.Renderer.ControlURL == "" {
		if _, err := cr.Start(ctx); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, cfg, r)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(runner,
		server.WithLogger(c.Logger),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithMaxDocuments(cfg.Server.MaxDocuments))

	c.Logger.Info("listening", "version", buildinfo.Version, "addr", cfg.Server.Addr, "renderer", cfg.Renderer.Kind, "cache", cfg.Cache.Backend)
	if err := server.ListenAndServe(ctx, cfg.Server.Addr, srv, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}
