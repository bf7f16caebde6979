// Package pipeline loads several IR inputs concurrently.
//
// Each input is read, looked up in the snapshot cache, and on a miss parsed
// and reconstructed by a single goroutine. A failing input does not stop the
// others; its error is reported in its Result.
package pipeline

import (
	"context"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"irgraph/internal/foreign"
	"irgraph/internal/irerr"
	"irgraph/internal/llgraph"
	"irgraph/internal/observ"
	"irgraph/internal/reconstruct"
	"irgraph/internal/snapcache"
	"irgraph/internal/trace"
)

// Options configures Run.
type Options struct {
	Loader  foreign.Loader
	Backend string // selects Loader when nil; also namespaces cache keys
	Jobs    int    // 0 means GOMAXPROCS
	Cache   *snapcache.Cache
	Sink    ProgressSink
	Timer   *observ.Timer
}

// Result is the outcome for one input.
type Result struct {
	Path    string
	Module  *llgraph.Module
	Err     error
	Cached  bool
	Elapsed time.Duration
}

// Run loads paths and returns one Result per path, in input order. The
// returned error is non-nil only when ctx is canceled.
func Run(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	if opts.Loader == nil {
		l, err := foreign.Lookup(opts.Backend)
		if err != nil {
			return nil, irerr.Wrap(irerr.PhaseConfig, irerr.KindUnsupported, err, "select backend")
		}
		opts.Loader = l
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "pipeline", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	r := &runner{opts: opts}
	for _, p := range paths {
		r.emit(Event{File: p, Stage: StageRead, Status: StatusQueued})
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.one(gctx, path)
			return nil
		})
	}
	err := g.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	span.WithExtra("inputs", itoa(len(paths))).WithExtra("failed", itoa(failed)).End("")
	if err != nil {
		return results, err
	}
	return results, nil
}

type runner struct {
	opts Options
}

func (r *runner) emit(ev Event) {
	if r.opts.Sink != nil {
		r.opts.Sink.OnEvent(ev)
	}
}

func (r *runner) fail(res Result, stage Stage, err error, start time.Time) Result {
	res.Err = err
	res.Elapsed = time.Since(start)
	r.emit(Event{File: res.Path, Stage: stage, Status: StatusError, Err: err, Elapsed: res.Elapsed})
	Logger().Warn("input failed", zap.String("path", res.Path), zap.String("stage", string(stage)), zap.Error(err))
	return res
}

func (r *runner) one(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path}

	r.emit(Event{File: path, Stage: StageRead, Status: StatusWorking})
	var data []byte
	err := r.opts.Timer.Track("read "+path, func() (err error) {
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		return r.fail(res, StageRead, irerr.LoadFailure(path, err), start)
	}

	key := snapcache.KeyFor(r.opts.Backend, data)
	if r.opts.Cache != nil {
		r.emit(Event{File: path, Stage: StageCache, Status: StatusWorking})
		m, ok, err := r.opts.Cache.Get(key)
		if err != nil {
			// a corrupt entry is rebuilt below
			Logger().Warn("cache read failed", zap.String("path", path), zap.Error(err))
		}
		if ok {
			// the key covers content only; identical files share an entry
			m.Name = path
			res.Module, res.Cached = m, true
			res.Elapsed = time.Since(start)
			r.emit(Event{File: path, Stage: StageCache, Status: StatusCached, Elapsed: res.Elapsed})
			return res
		}
	}

	r.emit(Event{File: path, Stage: StageLoad, Status: StatusWorking})
	err = r.opts.Timer.Track("load "+path, func() (err error) {
		res.Module, err = reconstruct.LoadBytes(ctx, r.opts.Loader, path, data)
		return err
	})
	if err != nil {
		return r.fail(res, StageLoad, err, start)
	}

	if r.opts.Cache != nil {
		r.emit(Event{File: path, Stage: StageStore, Status: StatusWorking})
		if err := r.opts.Cache.Put(key, res.Module); err != nil {
			Logger().Warn("cache write failed", zap.String("path", path), zap.Error(err))
		}
	}

	res.Elapsed = time.Since(start)
	r.emit(Event{File: path, Stage: StageLoad, Status: StatusDone, Elapsed: res.Elapsed})
	return res
}
