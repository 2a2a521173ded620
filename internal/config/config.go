// Package config loads CLI defaults from the environment and an optional
// .env file. The engine itself reads no environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/tphakala/go-nightcore"
)

// Defaults holds the environment-provided defaults for CLI flags.
type Defaults struct {
	Speed       float64 `env:"NIGHTCORE_SPEED, default=1.35"`
	Kernel      string  `env:"NIGHTCORE_KERNEL, default=sinc"`
	Quality     string  `env:"NIGHTCORE_QUALITY, default=high"`
	Workers     int     `env:"NIGHTCORE_WORKERS, default=0"`
	Suffix      string  `env:"NIGHTCORE_SUFFIX, default=_nightcore"`
	ChunkFrames int     `env:"NIGHTCORE_CHUNK_FRAMES, default=4096"`
}

// LoadEnv loads variables from the given .env files, or ./.env when none
// are given. Variables already set are not overridden. A missing file is
// reported with an error satisfying errors.Is(err, os.ErrNotExist).
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// LoadEnvIfPresent is LoadEnv that ignores missing files.
func LoadEnvIfPresent(files ...string) error {
	if err := LoadEnv(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// NewDefaultsFromEnv reads Defaults from the process environment.
func NewDefaultsFromEnv(ctx context.Context) (*Defaults, error) {
	return newDefaults(ctx, envconfig.OsLookuper())
}

func newDefaults(ctx context.Context, lookuper envconfig.Lookuper) (*Defaults, error) {
	var cfg Defaults
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every default is usable.
func (d *Defaults) Validate() error {
	if !(d.Speed > 0) {
		return fmt.Errorf("NIGHTCORE_SPEED must be positive, got %v", d.Speed)
	}
	if _, err := nightcore.ParseKernel(d.Kernel); err != nil {
		return fmt.Errorf("NIGHTCORE_KERNEL: %w", err)
	}
	if _, err := nightcore.ParseQuality(d.Quality); err != nil {
		return fmt.Errorf("NIGHTCORE_QUALITY: %w", err)
	}
	if d.Workers < 0 {
		return fmt.Errorf("NIGHTCORE_WORKERS must not be negative, got %d", d.Workers)
	}
	if d.ChunkFrames < 1 {
		return fmt.Errorf("NIGHTCORE_CHUNK_FRAMES must be positive, got %d", d.ChunkFrames)
	}
	return nil
}
