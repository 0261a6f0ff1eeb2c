package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/kinesis-dev/kinesis/internal/config"
	"github.com/kinesis-dev/kinesis/internal/demo"
	"github.com/kinesis-dev/kinesis/pkg/server"
	"github.com/kinesis-dev/kinesis/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		address    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live components",
		Long: `Start the live server. Each browser connection mounts its own
component instance and receives mutations over WebSocket.

Examples:
  kinesis serve
  kinesis serve --config kinesis.yaml
  kinesis serve --addr 0.0.0.0:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			srvCfg := serverConfig(cfg)
			if address != "" {
				srvCfg.Address = address
			}

			logger := cfg.NewLogger(cmd.ErrOrStderr())
			srv := server.New(srvCfg, demo.Components(), serverOptions(cfg, logger)...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success(cmd, "Serving %s on http://%s", cfg.Server.Component, srvCfg.Address)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to kinesis.json or kinesis.yaml")
	cmd.Flags().StringVar(&address, "addr", "", "Listen address (overrides config)")

	return cmd
}

func serverConfig(cfg *config.Config) server.Config {
	srvCfg := server.DefaultConfig()
	srvCfg.Address = cfg.Address()
	srvCfg.Title = cfg.Name
	srvCfg.DefaultComponent = cfg.Server.Component
	srvCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	srvCfg.WriteTimeout = cfg.WriteTimeout()
	srvCfg.MaxFrameSize = int64(cfg.Server.MaxFrameSize)
	return srvCfg
}

func serverOptions(cfg *config.Config, logger *slog.Logger) []server.Option {
	opts := []server.Option{server.WithLogger(logger)}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithRegistry(reg),
		)
		opts = append(opts, server.WithMetrics(metrics, reg))
	}

	if cfg.Tracing.Enabled {
		tracer := telemetry.NewTracer(telemetry.WithTracerName(cfg.Tracing.TracerName))
		opts = append(opts, server.WithObserver(tracer))
	}

	return opts
}
