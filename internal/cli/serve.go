package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/materialkit/matdump/internal/server"
	"github.com/materialkit/matdump/pkg/scene"
)

// serveCommand creates the serve command for the HTTP export service.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP export service",
		Long: `Run the HTTP export service.

The service exposes library material lists and on-demand document exports
over HTTP. Documents are rendered per request in the style selected by the
style query parameter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			srv := server.New(server.Config{
				Logger:   c.Logger,
				MaxDepth: cfg.Export.MaxDepth,
				OpenLibrary: func(ctx context.Context, name string) (scene.Library, func(), error) {
					return c.openLibrary(ctx, cfg, name)
				},
			})

			printInfo("listening on %s", cfg.Server.Addr)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8402)")

	return cmd
}
