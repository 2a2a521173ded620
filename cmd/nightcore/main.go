// Command nightcore speeds up audio files, raising tempo and pitch together.
//
// Usage:
//
//	nightcore render --speed 1.35 input.flac output.wav
//	nightcore batch --out-dir out --workers 4 *.mp3
//	nightcore info input.wav
//	nightcore formats
//
// Flag defaults can be set with NIGHTCORE_* environment variables or a
// .env file in the working directory.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/go-nightcore/internal/config"
)

func main() {
	if err := config.LoadEnvIfPresent(); err != nil {
		slog.Error("Failed to load .env file", slog.Any("error", err))
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
