package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tphakala/go-nightcore"
	"github.com/tphakala/go-nightcore/internal/audioio"
	"github.com/tphakala/go-nightcore/internal/batch"
	"github.com/tphakala/go-nightcore/internal/config"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2

	// progressEvery is the number of chunks between debug progress lines.
	progressEvery = 256
)

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	defaults, err := config.NewDefaultsFromEnv(ctx)
	if err != nil {
		logger.Error("Invalid environment configuration", slog.Any("error", err))
		return exitUsage
	}

	app := newApp(defaults, logger, level)
	app.Writer = stdout
	app.ErrWriter = stderr

	err = app.RunContext(ctx, args)
	if err == nil {
		return exitOK
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			logger.Error(msg)
		}
		return exitErr.ExitCode()
	}
	logger.Error("Command failed", slog.Any("error", err))
	return exitUsage
}

func newApp(defaults *config.Defaults, logger *slog.Logger, level *slog.LevelVar) *cli.App {
	return &cli.App{
		Name:  "nightcore",
		Usage: "Speed up audio, raising tempo and pitch together",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				level.Set(slog.LevelDebug)
			}
			return nil
		},
		// Exit codes are handled by run.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			renderCommand(defaults, logger),
			batchCommand(defaults, logger),
			infoCommand(defaults),
			formatsCommand(),
		},
	}
}

func renderFlags(defaults *config.Defaults) []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:    "speed",
			Aliases: []string{"s"},
			Usage:   "Playback speed factor",
			Value:   defaults.Speed,
		},
		&cli.StringFlag{
			Name:    "kernel",
			Aliases: []string{"k"},
			Usage:   "Interpolation kernel: sinc, cubic or linear",
			Value:   defaults.Kernel,
		},
		&cli.StringFlag{
			Name:    "quality",
			Aliases: []string{"q"},
			Usage:   "Sinc quality: high, medium or low",
			Value:   defaults.Quality,
		},
		&cli.IntFlag{
			Name:  "rate",
			Usage: "Output sample rate in Hz (0 keeps the input rate)",
		},
		&cli.IntFlag{
			Name:  "bits",
			Usage: "Output bit depth: 16, 24 or 32 (0 follows the input)",
		},
		&cli.IntFlag{
			Name:  "phases",
			Usage: "Polyphase table resolution, a power of two (0 selects the default)",
		},
		&cli.IntFlag{
			Name:  "chunk",
			Usage: "Frames read per chunk",
			Value: defaults.ChunkFrames,
		},
	}
}

// optionsFromFlags builds batch options from the render flags of c.
func optionsFromFlags(c *cli.Context, logger *slog.Logger) (batch.Options, error) {
	kernel, err := nightcore.ParseKernel(c.String("kernel"))
	if err != nil {
		return batch.Options{}, err
	}
	quality, err := nightcore.ParseQuality(c.String("quality"))
	if err != nil {
		return batch.Options{}, err
	}

	speed := c.Float64("speed")
	if !(speed > 0) {
		return batch.Options{}, fmt.Errorf("%w: speed must be positive, got %v", nightcore.ErrInvalidConfig, speed)
	}

	switch bits := c.Int("bits"); bits {
	case 0, 16, 24, 32:
	default:
		return batch.Options{}, fmt.Errorf("%w: %d", audioio.ErrUnsupportedBitDepth, bits)
	}

	opts := batch.Options{
		Render: nightcore.RenderOptions{
			Speed:       speed,
			Kernel:      kernel,
			Quality:     quality,
			Phases:      c.Int("phases"),
			OutputRate:  c.Int("rate"),
			ChunkFrames: c.Int("chunk"),
		},
		BitDepth: c.Int("bits"),
	}
	if logger.Enabled(c.Context, slog.LevelDebug) {
		opts.Render.Progress = func(s nightcore.RenderStats) {
			if s.Chunks%progressEvery == 0 {
				logger.Debug("Rendering",
					slog.Int64("frames_in", s.FramesIn),
					slog.Int64("frames_out", s.FramesOut),
					slog.Int("chunks", s.Chunks))
			}
		}
	}
	return opts, nil
}

func renderCommand(defaults *config.Defaults, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Speed up one file and write it as WAV",
		ArgsUsage: "INPUT OUTPUT",
		Flags:     renderFlags(defaults),
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return cli.Exit("render needs exactly one INPUT and one OUTPUT", exitUsage)
			}
			opts, err := optionsFromFlags(c, logger)
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}

			job := batch.Job{Input: c.Args().Get(0), Output: c.Args().Get(1)}
			logger.Debug("Rendering file",
				slog.String("input", job.Input),
				slog.String("output", job.Output),
				slog.Float64("speed", opts.Render.Speed),
				slog.String("kernel", opts.Render.Kernel.String()))

			stats, err := batch.RenderFile(c.Context, job, opts)
			if err != nil {
				return cli.Exit(err.Error(), exitFailure)
			}
			printStats(c.App.Writer, job, stats)
			return nil
		},
	}
}

func batchCommand(defaults *config.Defaults, logger *slog.Logger) *cli.Command {
	flags := append(renderFlags(defaults),
		&cli.StringFlag{
			Name:    "out-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for outputs (default: next to each input)",
		},
		&cli.StringFlag{
			Name:  "suffix",
			Usage: "Suffix added to each output file name",
			Value: defaults.Suffix,
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "Files rendered at once (0 uses one per CPU)",
			Value:   defaults.Workers,
		},
		&cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "Stop after the first failed file",
		},
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "Speed up many files concurrently",
		ArgsUsage: "INPUT...",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			inputs := c.Args().Slice()
			if len(inputs) == 0 {
				return cli.Exit("batch needs at least one INPUT", exitUsage)
			}
			opts, err := optionsFromFlags(c, logger)
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}
			if c.Int("workers") < 0 {
				return cli.Exit("workers must not be negative", exitUsage)
			}
			opts.Workers = c.Int("workers")
			opts.FailFast = c.Bool("fail-fast")

			jobs, err := batch.Plan(inputs, c.String("out-dir"), c.String("suffix"))
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}

			opts.OnResult = func(_ int, r batch.Result) {
				if r.Err != nil {
					logger.Error("Render failed",
						slog.String("input", r.Job.Input),
						slog.Any("error", r.Err))
					return
				}
				printStats(c.App.Writer, r.Job, r.Stats)
			}

			start := time.Now()
			results := batch.Run(c.Context, jobs, opts)
			failed := batch.Failed(results)
			logger.Info("Batch finished",
				slog.Int("files", len(results)),
				slog.Int("failed", failed),
				slog.Duration("elapsed", time.Since(start)))

			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d files failed", failed, len(results)), exitFailure)
			}
			return nil
		},
	}
}

func infoCommand(defaults *config.Defaults) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Describe an input file and the result of speeding it up",
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "speed",
				Aliases: []string{"s"},
				Usage:   "Playback speed factor",
				Value:   defaults.Speed,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit("info needs exactly one INPUT", exitUsage)
			}
			dec, err := audioio.Open(c.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), exitFailure)
			}
			defer func() { _ = dec.Close() }()

			cfg := nightcore.Config{
				Channels:  dec.Channels(),
				InputRate: dec.SampleRate(),
				Speed:     c.Float64("speed"),
			}
			eng, err := nightcore.New(cfg)
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}
			info := eng.Info()

			w := c.App.Writer
			fmt.Fprintf(w, "format:      %s\n", dec.Format())
			fmt.Fprintf(w, "sample rate: %d Hz\n", dec.SampleRate())
			fmt.Fprintf(w, "channels:    %d\n", dec.Channels())
			fmt.Fprintf(w, "bit depth:   %d\n", dec.BitDepth())
			if frames := dec.Frames(); frames > 0 {
				rate := float64(dec.SampleRate())
				fmt.Fprintf(w, "frames:      %d (%s)\n", frames, seconds(float64(frames)/rate))
				out := eng.ExpectedFrames(frames)
				fmt.Fprintf(w, "at %.2fx:     %d frames (%s)\n", cfg.Speed, out, seconds(float64(out)/rate))
			}
			fmt.Fprintf(w, "pitch:       %.0f Hz effective rate\n", cfg.EffectiveRate())
			fmt.Fprintf(w, "kernel:      %s, %d taps x %d phases, latency %d\n",
				info.Kernel, info.Taps, info.Phases, info.Latency)
			return nil
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: "List supported input formats",
		Action: func(c *cli.Context) error {
			for _, f := range audioio.Formats() {
				fmt.Fprintf(c.App.Writer, "%-5s %-12s %s\n", f.Name, strings.Join(f.Extensions, ","), f.Description)
			}
			return nil
		},
	}
}

func printStats(w io.Writer, job batch.Job, s nightcore.RenderStats) {
	fmt.Fprintf(w, "%s -> %s: %d -> %d frames, %d Hz, %d ch, %s\n",
		job.Input, job.Output, s.FramesIn, s.FramesOut, s.OutputRate, s.Channels,
		s.Elapsed.Round(time.Millisecond))
}

func seconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond).String()
}
