package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shipdesk/logistics/internal/server"
	"github.com/shipdesk/logistics/internal/service"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "logistics",
	Short:   "Shipdesk Logistics - rate resolution and courier aggregation service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	metrics := initMetrics()

	repo, repoClose, err := initRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing repository: %w", err)
	}
	defer repoClose()

	engine, store := initRateEngine(cfg, repo, metrics, logger)
	registry := initCourierRegistry(cfg, logger)

	logger.Info("Starting Shipdesk Logistics",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Int("couriers", registry.Count()),
	)

	svc := service.New(engine, store, registry, metrics, logger)
	srv := server.New(server.Config{Port: cfg.Port}, svc, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
