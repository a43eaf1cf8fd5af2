// cmd/server/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"formauth-server/internal/config"
	"formauth-server/internal/server"
)

func main() {
	// Bootstrap logger for config loading.
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	log.Info("config loaded", "addr", cfg.ServerAddr, "log_level", level.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	if err := srv.Start(ctx); err != nil {
		log.Error("server stopped", "error", err)
		srv.Close()
		os.Exit(1)
	}
	log.Info("server stopped")
}
