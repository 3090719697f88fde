package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/internal/kma"
	"github.com/vzahanych/kma-weather/internal/server"
	"github.com/vzahanych/kma-weather/internal/server/handlers"
	"github.com/vzahanych/kma-weather/internal/weather"
	"go.uber.org/zap"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the KMA weather server",
		Long:  `Start the HTTP server exposing grid conversion, KMA weather products, city lookups and MCP-style tools.`,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	zl := log.Logger

	zl.Info("Starting KMA weather server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.Int("cities", len(cfg.Cities)))

	if cfg.KMA.ServiceKey == "" {
		zl.Warn("kma.service_key is empty, upstream calls will be rejected")
	}

	metrics := handlers.NewMetrics(cfg.Version)

	client := kma.NewClientWithConfig(cfg.KMA, zl.Named("kma"), tele)
	client.SetMetricsRecorder(metrics)

	svc := weather.NewService(cfg.KMA, weather.NewCities(cfg.Cities), client, zl.Named("weather"), tele)
	svc.SetMetricsRecorder(metrics)

	if cfg.KMA.Warmup.Enabled {
		go func() {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			weather.NewWarmer(svc, cfg.KMA.Warmup.Workers).Run(ctx, nil)
		}()
	}

	srv := server.NewServer(cfg, svc, metrics, zl, tele)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		zl.Error("Server error", zap.Error(err))
		return err
	case <-cmd.Context().Done():
		zl.Info("Shutting down server")

		if err := srv.Shutdown(context.Background()); err != nil {
			zl.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		zl.Info("Server shutdown complete")
		return nil
	}
}
