// Package batch renders many files concurrently, one engine per file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/tphakala/go-nightcore"
	"github.com/tphakala/go-nightcore/internal/audioio"
	"golang.org/x/sync/errgroup"
)

// ErrOutputConflict indicates two jobs writing the same file, or a job
// overwriting its own input.
var ErrOutputConflict = errors.New("output path conflict")

// Job is one file to render.
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of a Job.
type Result struct {
	Job     Job
	Stats   nightcore.RenderStats
	Elapsed time.Duration
	Err     error
}

// Options configures Run and RenderFile.
type Options struct {
	// Render configures each file's engine.
	Render nightcore.RenderOptions

	// BitDepth is the output bit depth. Zero follows the input, see
	// audioio.OutputBitDepth.
	BitDepth int

	// Workers bounds the number of files rendered at once. Zero uses one
	// worker per CPU.
	Workers int

	// FailFast cancels the remaining jobs after the first failure.
	FailFast bool

	// OnResult, if set, is called as each job finishes. Calls are
	// serialized but arrive in completion order.
	OnResult func(index int, r Result)
}

func (o *Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Run renders every job and returns one Result per job, in job order. A
// failing job does not stop the others unless FailFast is set; jobs that
// never started then report the cancellation as their error.
func Run(ctx context.Context, jobs []Job, opts Options) []Result {
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	runCtx := ctx
	if opts.FailFast {
		runCtx = gctx
	}

	var mu sync.Mutex
	report := func(i int) {
		if opts.OnResult == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		opts.OnResult(i, results[i])
	}

	for i, job := range jobs {
		g.Go(func() error {
			start := time.Now()
			results[i].Job = job

			if err := runCtx.Err(); err != nil {
				results[i].Err = err
				report(i)
				return nil
			}

			stats, err := RenderFile(runCtx, job, opts)
			results[i].Stats = stats
			results[i].Elapsed = time.Since(start)
			results[i].Err = err
			report(i)

			if err != nil && opts.FailFast {
				return err
			}
			return nil
		})
	}

	// Errors are reported per job.
	_ = g.Wait()
	return results
}

// RenderFile decodes job.Input, speeds it up and writes job.Output as WAV.
// The output only appears once rendering has succeeded.
func RenderFile(ctx context.Context, job Job, opts Options) (nightcore.RenderStats, error) {
	dec, err := audioio.Open(job.Input)
	if err != nil {
		return nightcore.RenderStats{}, err
	}
	defer func() { _ = dec.Close() }()

	rate := opts.Render.OutputRate
	if rate == 0 {
		rate = dec.SampleRate()
	}
	depth := opts.BitDepth
	if depth == 0 {
		depth = audioio.OutputBitDepth(dec.BitDepth())
	}

	w, err := audioio.CreateWAV(job.Output, rate, dec.Channels(), depth)
	if err != nil {
		return nightcore.RenderStats{}, err
	}

	stats, err := nightcore.Render(ctx, dec, w, opts.Render)
	if err != nil {
		_ = w.Abort()
		return stats, fmt.Errorf("render %s: %w", filepath.Base(job.Input), err)
	}
	if err := w.Close(); err != nil {
		return stats, err
	}
	return stats, nil
}

// OutputPath derives the output file for input: <dir>/<stem><suffix>.wav.
// An empty dir places the output next to the input.
func OutputPath(input, dir, suffix string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem+suffix+".wav")
}

// Plan builds jobs for inputs with OutputPath, rejecting plans where two
// inputs map to the same output or an output would replace an input.
func Plan(inputs []string, dir, suffix string) ([]Job, error) {
	jobs := make([]Job, 0, len(inputs))
	owners := make(map[string]string, len(inputs))
	sources := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		key, err := pathKey(in)
		if err != nil {
			return nil, err
		}
		sources[key] = true
	}

	for _, in := range inputs {
		out := OutputPath(in, dir, suffix)
		key, err := pathKey(out)
		if err != nil {
			return nil, err
		}

		if sources[key] {
			return nil, fmt.Errorf("%w: %s would overwrite an input", ErrOutputConflict, out)
		}
		if prev, ok := owners[key]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, prev, in, out)
		}
		owners[key] = in
		jobs = append(jobs, Job{Input: in, Output: out})
	}
	return jobs, nil
}

// pathKey identifies a file by its absolute path so that relative and
// absolute spellings of one file compare equal.
func pathKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// Failed returns the number of results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
