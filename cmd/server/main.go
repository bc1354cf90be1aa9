package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/hr-records/internal/app"
	"github.com/ogurasousui/hr-records/internal/platform/config"
	"github.com/ogurasousui/hr-records/internal/platform/logging"
	"github.com/ogurasousui/hr-records/internal/platform/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	application, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("failed to close stores", slog.Any("error", err))
		}
	}()

	grpcServer := server.New(cfg.Server.ListenAddr, application)

	logger.Info("gRPC server listening",
		slog.String("addr", cfg.Server.ListenAddr),
		slog.String("relational_driver", cfg.Relational.Driver),
		slog.Bool("reviews_degraded", application.ReviewsDegraded()),
	)

	if err := grpcServer.Run(ctx); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		stop()
		_ = application.Close()
		os.Exit(1)
	}
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}
