package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/api"
	"github.com/HendryAvila/knowgraph/internal/metrics"
)

func httpCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the HTTP API, the WebSocket viewer and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, cleanup, err := opts.open(metrics.NewCollector("knowgraph"))
			defer cleanup()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			if !cfg.Auth.Enabled() {
				deps.Logger.Warn("no credentials configured, the API is open")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = api.NewServer(deps, cfg).Run(ctx)
			deps.Logger.Info("http server stopped", zap.Error(err))
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides http.addr)")
	return cmd
}
