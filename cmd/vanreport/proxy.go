package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/pkg/offline"
)

func newProxyCmd(c *cli) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Install the offline cache and serve the shell through it",
		Long: `proxy installs the current cache version from the configured origin,
activates it (removing older versions), and then answers requests from the
cache: navigations are network-first with a cached shell fallback, everything
else is cache-first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			cache, err := a.OpenCache(ctx)
			if err != nil {
				return err
			}
			worker, err := a.Worker(cache, nil, offline.WithClients(offline.ClaimFunc(func(context.Context) error {
				c.logger.Info("offline cache now controls clients")
				return nil
			})))
			if err != nil {
				return err
			}

			report, err := worker.Run(ctx)
			if err != nil {
				return err
			}
			fields := []zap.Field{
				zap.String("version", report.Version),
				zap.Int("cached", len(report.Cached)),
				zap.Int("failed", len(report.Failed)),
			}
			if report.Partial() {
				c.logger.Warn("offline cache installed partially", fields...)
			} else {
				c.logger.Info("offline cache installed", fields...)
			}

			handler := offline.Handler(worker, offline.WithHandlerLogger(c.logger.Named("proxy")))
			c.logger.Info("serving through offline cache", zap.String("addr", listen), zap.String("origin", worker.Origin().String()))
			return listenAndServe(ctx, c.logger, listen, handler)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8081", "proxy listen address")
	return cmd
}
