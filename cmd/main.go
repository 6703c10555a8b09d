package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/coverart/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "coverart",
		Usage:    "Show the album artwork of the song playing on Spotify",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.Before,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrReauthRequired):
			logger.Error("session ended, log in again", "error", err)
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
