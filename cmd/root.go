package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/pkg/logger"
	"github.com/vzahanych/kma-weather/pkg/telemetry"
	"go.uber.org/zap"
)

var (
	configPath string
	log        *logger.Logger
	tele       *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kma-weather",
		Short: "Korea Meteorological Administration weather service",
		Long: `Serves KMA village forecast products (ultra-short nowcast, ultra-short forecast
and short-term forecast) for any coordinate in Korea, with grid conversion,
base-time resolution, caching and observability.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdownServices(context.Background())
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(newServerCmd())
	cmd.AddCommand(newGridCmd())
	cmd.AddCommand(newBaseTimeCmd())

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		if log != nil {
			log.Info("Received shutdown signal", zap.String("signal", sig.String()))
		}
		cancel()
	}()

	return rootCmd().ExecuteContext(ctx)
}

func initializeServices(ctx context.Context) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Set config
	// Having config in atomic allows changing it during runtime
	config.SetConfig(cfg)

	// 3. Initialize logger
	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 4. Initialize telemetry; the service runs without tracing if the
	// collector is unreachable.
	tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
		tele = telemetry.NewDisabled()
	}

	return nil
}

func shutdownServices(ctx context.Context) error {
	if tele != nil {
		if err := tele.Shutdown(ctx); err != nil && log != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
	if log != nil {
		_ = log.Sync()
	}
	return nil
}
