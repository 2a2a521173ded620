package batch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-nightcore"
	"github.com/tphakala/go-nightcore/internal/audioio"
	"github.com/tphakala/go-nightcore/internal/testutil"
)

func writeTone(t *testing.T, path string, frames, rate, channels, depth int) {
	t.Helper()
	w, err := audioio.CreateWAV(path, rate, channels, depth)
	require.NoError(t, err)

	planar := make([][]float64, channels)
	for ch := range planar {
		planar[ch] = testutil.Sine(frames, 440*float64(ch+1), float64(rate))
	}
	require.NoError(t, w.Write(nightcore.AudioBuffer{
		Data:       testutil.Interleave(planar...),
		SampleRate: rate,
		Channels:   channels,
	}))
	require.NoError(t, w.Close())
}

func frameCount(t *testing.T, path string) (int64, audioio.Decoder) {
	t.Helper()
	dec, err := audioio.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dec.Close() })

	var frames int64
	buf := make([]float64, 4096*dec.Channels())
	for {
		n, err := dec.Read(buf)
		frames += int64(n / dec.Channels())
		if errors.Is(err, io.EOF) {
			return frames, dec
		}
		require.NoError(t, err)
	}
}

func TestRun_OrderedResults(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	inputs := []string{
		filepath.Join(dir, "a.wav"),
		filepath.Join(dir, "missing.wav"),
		filepath.Join(dir, "c.wav"),
		filepath.Join(dir, "d.wav"),
	}
	writeTone(t, inputs[0], 13500, 44100, 2, 16)
	writeTone(t, inputs[2], 2700, 22050, 1, 24)
	writeTone(t, inputs[3], 100, 8000, 1, 32)

	jobs, err := Plan(inputs, outDir, "_nc")
	require.NoError(t, err)

	var seen []int
	results := Run(context.Background(), jobs, Options{
		Workers:  3,
		Render:   nightcore.RenderOptions{Kernel: nightcore.KernelCubic},
		OnResult: func(i int, _ Result) { seen = append(seen, i) },
	})

	require.Len(t, results, len(jobs))
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, seen)
	assert.Equal(t, 1, Failed(results))

	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job, "results must follow job order")
	}

	require.ErrorIs(t, results[1].Err, os.ErrNotExist)
	assert.NoFileExists(t, jobs[1].Output)

	tests := []struct {
		idx      int
		frames   int64
		rate     int
		channels int
		depth    int
	}{
		{0, 10000, 44100, 2, 16},
		{2, 2000, 22050, 1, 24},
		{3, 75, 8000, 1, 32},
	}
	for _, tt := range tests {
		r := results[tt.idx]
		require.NoError(t, r.Err)
		assert.Equal(t, tt.frames, r.Stats.FramesOut)

		frames, dec := frameCount(t, r.Job.Output)
		assert.Equal(t, tt.frames, frames)
		assert.Equal(t, tt.rate, dec.SampleRate())
		assert.Equal(t, tt.channels, dec.Channels())
		assert.Equal(t, tt.depth, dec.BitDepth())
	}
}

func TestRun_FailFast(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.wav")
	writeTone(t, good, 1000, 8000, 1, 16)

	jobs := []Job{
		{Input: filepath.Join(dir, "bad.flac"), Output: filepath.Join(dir, "bad_out.wav")},
		{Input: good, Output: filepath.Join(dir, "good_out.wav")},
	}
	require.NoError(t, os.WriteFile(jobs[0].Input, []byte("nope"), 0o600))

	results := Run(context.Background(), jobs, Options{Workers: 1, FailFast: true})
	require.ErrorIs(t, results[0].Err, audioio.ErrInvalidFile)
	require.ErrorIs(t, results[1].Err, context.Canceled)
	assert.NoFileExists(t, jobs[1].Output)

	// Without FailFast the good file still renders.
	results = Run(context.Background(), jobs, Options{Workers: 1})
	require.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
	assert.FileExists(t, jobs[1].Output)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, []Job{{Input: "a.wav", Output: "b.wav"}}, Options{})
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestRenderFile_Options(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	writeTone(t, in, 4410, 44100, 2, 16)

	job := Job{Input: in, Output: filepath.Join(dir, "out.wav")}
	stats, err := RenderFile(context.Background(), job, Options{
		BitDepth: 24,
		Render:   nightcore.RenderOptions{Speed: 1.5, OutputRate: 48000},
	})
	require.NoError(t, err)
	assert.Equal(t, 48000, stats.OutputRate)

	frames, dec := frameCount(t, job.Output)
	assert.Equal(t, stats.FramesOut, frames)
	assert.Equal(t, 48000, dec.SampleRate())
	assert.Equal(t, 24, dec.BitDepth())
	assert.InDelta(t, 4410.0*48000/44100/1.5, float64(frames), 1)
}

func TestRenderFile_InvalidSpeedLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	writeTone(t, in, 100, 8000, 1, 16)

	job := Job{Input: in, Output: filepath.Join(dir, "out.wav")}
	_, err := RenderFile(context.Background(), job, Options{Render: nightcore.RenderOptions{Speed: -2}})
	require.ErrorIs(t, err, nightcore.ErrInvalidConfig)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the input should remain")
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, dir, suffix, want string
	}{
		{"music/song.mp3", "", "_nightcore", filepath.Join("music", "song_nightcore.wav")},
		{"music/song.flac", "out", "_nc", filepath.Join("out", "song_nc.wav")},
		{"song.tar.ogg", "", "", "song.tar.wav"},
		{"/abs/dir/track.wav", "/tmp", "_fast", filepath.Join("/tmp", "track_fast.wav")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.input, tt.dir, tt.suffix), tt.input)
	}
}

func TestPlan(t *testing.T) {
	jobs, err := Plan([]string{"a/one.mp3", "b/two.flac"}, "out", "_nc")
	require.NoError(t, err)

	want := []Job{
		{Input: "a/one.mp3", Output: filepath.Join("out", "one_nc.wav")},
		{Input: "b/two.flac", Output: filepath.Join("out", "two_nc.wav")},
	}
	if diff := cmp.Diff(want, jobs); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}

	_, err = Plan([]string{"a/one.mp3", "b/one.flac"}, "out", "_nc")
	require.ErrorIs(t, err, ErrOutputConflict)

	_, err = Plan([]string{"one.wav"}, "", "")
	require.ErrorIs(t, err, ErrOutputConflict, "output would replace the input")

	jobs, err = Plan(nil, "", "_nc")
	require.NoError(t, err)
	if diff := cmp.Diff([]Job{}, jobs, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("empty plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_ConflictsAcrossPathSpellings(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		inputs []string
		dir    string
	}{
		{"relative and absolute inputs", []string{"a.mp3", filepath.Join(cwd, "a.flac")}, ""},
		{"absolute output dir", []string{"a.wav"}, cwd},
		{"output dir through parent", []string{"music/one.wav"}, filepath.Join("music", "sub", "..")},
		{"absolute input, relative dir", []string{filepath.Join(cwd, "track.wav")}, "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.inputs, tt.dir, "")
			require.ErrorIs(t, err, ErrOutputConflict)
		})
	}
}
