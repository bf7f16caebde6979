package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"irgraph/internal/foreign/llirmod"
	"irgraph/internal/irerr"
	"irgraph/internal/observ"
	"irgraph/internal/render"
	"irgraph/internal/snapcache"
	"irgraph/internal/testkit"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "ir", name)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(stage Stage, status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Stage == stage && ev.Status == status {
			n++
		}
	}
	return n
}

func TestRun_KeepsInputOrder(t *testing.T) {
	paths := []string{fixture("switch.ll"), fixture("parity.ll"), fixture("inlineasm.ll")}
	tm := observ.NewTimer()
	rec := &recorder{}

	results, err := Run(context.Background(), paths, Options{Loader: llirmod.Loader{}, Jobs: 3, Sink: rec, Timer: tm})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		require.NoError(t, res.Err)
		require.Equal(t, paths[i], res.Path)
		require.NotNil(t, res.Module)
		require.NoError(t, testkit.CheckGraphInvariants(res.Module))
		require.False(t, res.Cached)
	}
	_, ok := results[1].Module.Func("even")
	require.True(t, ok)
	_, ok = results[0].Module.Func("pick")
	require.True(t, ok)

	require.Equal(t, 3, rec.count(StageRead, StatusQueued))
	require.Equal(t, 3, rec.count(StageLoad, StatusDone))
	require.Len(t, tm.Report().Phases, 6)
}

func TestRun_FailuresStayPerInput(t *testing.T) {
	paths := []string{fixture("truncated.ll"), fixture("missing.ll"), fixture("parity.ll")}
	rec := &recorder{}

	results, err := Run(context.Background(), paths, Options{Loader: llirmod.Loader{}, Jobs: 1, Sink: rec})
	require.NoError(t, err)
	require.True(t, errors.Is(results[0].Err, irerr.ErrLoadFailure))
	require.True(t, errors.Is(results[1].Err, irerr.ErrLoadFailure))
	require.Nil(t, results[0].Module)
	require.NoError(t, results[2].Err)
	require.Equal(t, 1, rec.count(StageRead, StatusError))
	require.Equal(t, 1, rec.count(StageLoad, StatusError))
}

func TestRun_UsesCache(t *testing.T) {
	cache, err := snapcache.Open(t.TempDir())
	require.NoError(t, err)
	paths := []string{fixture("parity.ll")}
	opts := Options{Loader: llirmod.Loader{}, Backend: "llir", Cache: cache}

	first, err := Run(context.Background(), paths, opts)
	require.NoError(t, err)
	require.False(t, first[0].Cached)

	rec := &recorder{}
	opts.Sink = rec
	second, err := Run(context.Background(), paths, opts)
	require.NoError(t, err)
	require.True(t, second[0].Cached)
	require.Equal(t, render.Text(first[0].Module), render.Text(second[0].Module))
	require.Equal(t, 1, rec.count(StageCache, StatusCached))
	require.Zero(t, rec.count(StageLoad, StatusWorking))
}

func TestRun_CacheHitKeepsPath(t *testing.T) {
	src, err := os.ReadFile(fixture("parity.ll"))
	require.NoError(t, err)
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.ll"), filepath.Join(dir, "b.ll")
	require.NoError(t, os.WriteFile(a, src, 0o644))
	require.NoError(t, os.WriteFile(b, src, 0o644))

	cache, err := snapcache.Open(t.TempDir())
	require.NoError(t, err)
	opts := Options{Loader: llirmod.Loader{}, Backend: "llir", Cache: cache}

	first, err := Run(context.Background(), []string{a}, opts)
	require.NoError(t, err)
	require.False(t, first[0].Cached)
	require.Equal(t, a, first[0].Module.Name)

	second, err := Run(context.Background(), []string{b}, opts)
	require.NoError(t, err)
	require.True(t, second[0].Cached)
	require.Equal(t, b, second[0].Path)
	require.Equal(t, b, second[0].Module.Name)
	require.Equal(t, first[0].Module.SourceFileName, second[0].Module.SourceFileName)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []string{fixture("parity.ll")}, Options{Loader: llirmod.Loader{}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_UnknownBackend(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{Backend: "nope"})
	require.Error(t, err)
	var ie *irerr.Error
	require.ErrorAs(t, err, &ie)
	require.Equal(t, irerr.KindUnsupported, ie.Kind)
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "a", Stage: StageLoad, Status: StatusDone})
	ev := <-ch
	require.Equal(t, "a", ev.File)
	ChannelSink{}.OnEvent(ev)
}
