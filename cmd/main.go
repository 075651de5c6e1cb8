// cmd/main.go is tmsctl, the operator console for the TMS GraphQL API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/config"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from .env, an optional config file and the environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Diagnostics go to stderr so they never mix with rendered views
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Ctrl-C stops follow commands and the shell
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.WithLogger(logger))
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	runErr := a.Run(ctx, os.Args[1:])
	if err := a.Close(); err != nil {
		logger.Warn("shutdown incomplete", "err", err)
	}
	if runErr != nil {
		if !errors.Is(runErr, app.ErrUsage) {
			fmt.Fprintf(os.Stderr, "tmsctl: %v\n", runErr)
		}
		os.Exit(1)
	}
}
