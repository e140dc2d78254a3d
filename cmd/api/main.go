package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/logger"
	"github.com/pageza/mealplanner/backend/internal/server"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Stop on SIGINT or SIGTERM; Run drains in-flight requests before returning.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Error("server setup failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Warn("failed to close connections", zap.Error(err))
		}
	}()

	log.Info("starting meal planner api", zap.String("environment", string(cfg.Environment)))
	if err := srv.Run(ctx); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
