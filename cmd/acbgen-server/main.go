package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/giangph58/Automated-ACB/generator"
	"github.com/giangph58/Automated-ACB/internal/config"
	"github.com/giangph58/Automated-ACB/internal/observability"
	"github.com/giangph58/Automated-ACB/internal/webapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	gen := generator.New(generator.Options{
		ContinueOnError: cfg.ContinueOnError,
		Logger:          logger,
	})

	srv := webapp.New(cfg, gen, metrics, logger)

	go func() {
		if err := srv.Listen(); err != nil {
			logger.Error("server stopped", "error", err)
		}
	}()
	logger.Info("listening", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
