package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RSSDigest/internal/app"
	"RSSDigest/internal/config"
	"RSSDigest/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := app.NewRootCommand(application).ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		application.Close()
		os.Exit(1)
	}
}
