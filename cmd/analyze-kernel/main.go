// Command analyze-kernel prints the DC gain and frequency response of the
// interpolation kernels at a given speed.
//
// Usage:
//
//	analyze-kernel --speed 1.35
//	analyze-kernel --speed 2 --radius 16 --atten 80 --phases 128
package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/tphakala/go-nightcore/internal/analysis"
	"github.com/tphakala/go-nightcore/internal/filter"
)

const (
	defaultSpeed   = 1.35
	defaultRadius  = 32
	defaultAtten   = 100.0
	defaultRolloff = 0.95

	// responsePoints is the frequency grid size for each kernel.
	responsePoints = 1 << 14
)

// report summarises one bank.
type report struct {
	Kind    filter.Kind
	Taps    int
	Latency int
	Cutoff  float64

	// DCError is the largest deviation of any row's tap sum from one.
	DCError float64

	// PassDB is the worst gain in dB over the lower half of the output band.
	PassDB float64

	// StopDB is the peak gain in dB above the output Nyquist frequency, up
	// to the first image of the input spectrum.
	StopDB float64
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Kernel analysis failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "analyze-kernel",
		Usage: "Report DC gain and frequency response of each interpolation kernel",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "speed", Value: defaultSpeed, Usage: "Playback speed factor"},
			&cli.IntFlag{Name: "phases", Value: filter.DefaultPhases, Usage: "Polyphase table resolution"},
			&cli.IntFlag{Name: "radius", Value: defaultRadius, Usage: "Sinc zero crossings either side of the centre"},
			&cli.Float64Flag{Name: "atten", Value: defaultAtten, Usage: "Sinc stopband attenuation in dB"},
			&cli.Float64Flag{Name: "rolloff", Value: defaultRolloff, Usage: "Sinc cutoff relative to the output Nyquist frequency"},
		},
		Action: func(c *cli.Context) error {
			speed := c.Float64("speed")
			if !(speed > 0) {
				return cli.Exit(fmt.Sprintf("speed must be positive, got %v", speed), 2)
			}
			phases := c.Int("phases")

			band := math.Min(1, 1/speed)
			cutoff := c.Float64("rolloff") * band
			if speed == 1 {
				cutoff = 1
			}
			kinds := []filter.Params{
				{Kind: filter.KindLinear, Phases: phases},
				{Kind: filter.KindCubic, Phases: phases},
				{Kind: filter.KindSinc, Phases: phases, Cutoff: cutoff, Radius: c.Int("radius"), Attenuation: c.Float64("atten")},
			}

			reports := make([]report, 0, len(kinds))
			for _, params := range kinds {
				r, err := analyze(params, band)
				if err != nil {
					return fmt.Errorf("%s: %w", params.Kind, err)
				}
				reports = append(reports, r)
			}

			fmt.Fprintf(c.App.Writer, "speed %.3f, output band %.3f of input Nyquist, %d phases\n\n", speed, band, phases)
			printReports(c.App.Writer, reports)
			return nil
		},
	}
}

// analyze designs the bank for params and measures it against an output
// band edge given as a fraction of the input Nyquist frequency.
func analyze(params filter.Params, band float64) (report, error) {
	bank, err := filter.DesignBank(params)
	if err != nil {
		return report{}, err
	}

	r := report{
		Kind:    bank.Kind,
		Taps:    bank.Taps,
		Latency: bank.Latency(),
		Cutoff:  bank.Cutoff,
	}
	for p := 0; p <= bank.Phases; p++ {
		r.DCError = math.Max(r.DCError, math.Abs(bank.DCGain(p)-1))
	}

	// The prototype runs at Phases times the input rate, so input-relative
	// frequencies shrink by that factor.
	resp := analysis.MagnitudeResponse(bank.Prototype(), responsePoints)
	scale := 1 / float64(bank.Phases)

	r.PassDB = math.Inf(1)
	last := len(resp) - 1
	for i, m := range resp {
		if f := float64(i) / float64(last); f <= 0.5*band*scale {
			r.PassDB = math.Min(r.PassDB, analysis.MagnitudeDB(m))
		}
	}
	r.StopDB = analysis.PeakInBand(resp, band*scale, (2-band)*scale)
	return r, nil
}

func printReports(w io.Writer, reports []report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "kernel\ttaps\tlatency\tcutoff\tmax DC error\tpassband dB\tstopband dB")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.3f\t%.2e\t%.3f\t%.1f\n",
			r.Kind, r.Taps, r.Latency, r.Cutoff, r.DCError, r.PassDB, r.StopDB)
	}
	_ = tw.Flush()
}
