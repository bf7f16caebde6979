package reconstruct

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"irgraph/internal/foreign"
	"irgraph/internal/irerr"
	"irgraph/internal/llgraph"
	"irgraph/internal/trace"
)

// Load parses path with loader and reconstructs it. The foreign module is
// closed before Load returns. On failure the graph is nil.
func Load(ctx context.Context, loader foreign.Loader, path string) (*llgraph.Module, error) {
	return load(ctx, path, func() (foreign.Module, error) {
		return loader.LoadFile(path)
	})
}

// LoadBytes is Load for in-memory input.
func LoadBytes(ctx context.Context, loader foreign.Loader, name string, data []byte) (*llgraph.Module, error) {
	return load(ctx, name, func() (foreign.Module, error) {
		return loader.LoadBytes(name, data)
	})
}

func load(ctx context.Context, name string, open func() (foreign.Module, error)) (*llgraph.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "load:"+name, trace.CurrentSpan(ctx).SpanID)

	fm, err := open()
	if err == nil && fm == nil {
		err = errors.New("loader returned no module")
	}
	if err != nil {
		span.End("failed")
		lerr := irerr.LoadFailure(name, err)
		Logger().Debug("load failed", zap.String("module", name), zap.Error(err))
		return nil, lerr
	}
	span.End("")

	defer func() {
		if cerr := fm.Close(); cerr != nil {
			Logger().Warn("closing foreign module", zap.String("module", name), zap.Error(cerr))
		}
	}()

	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
	return Build(ctx, fm)
}
