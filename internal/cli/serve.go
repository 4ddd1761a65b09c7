package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutmetrics/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the metrics HTTP API",
		Long: `Serve the metrics HTTP API.

  POST /v1/metrics        analyze a JSON diagram
  GET  /v1/reports        list stored reports (?limit=)
  GET  /v1/reports/{id}   fetch one stored report
  GET  /healthz           liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, cfg, runnerOpts{noCache: noCache, store: true})
			if err != nil {
				return err
			}
			defer runner.Close(context.WithoutCancel(ctx))

			srv := server.New(runner, server.Options{
				Timeout:      cfg.Timeout.Duration,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				ReadTimeout:  cfg.Server.ReadTimeout.Duration,
				WriteTimeout: cfg.Server.WriteTimeout.Duration,
				Logger:       c.Logger,
			})
			c.Logger.Info("report store", "backend", cfg.Store.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")

	return cmd
}
