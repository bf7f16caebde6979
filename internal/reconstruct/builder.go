package reconstruct

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"irgraph/internal/debugloc"
	"irgraph/internal/foreign"
	"irgraph/internal/irerr"
	"irgraph/internal/llgraph"
	"irgraph/internal/trace"
)

// builder holds the state of one reconstruction walk.
type builder struct {
	m     foreign.Module
	name  string
	fn    string // function being walked, for log context
	funcs map[foreign.Handle]string
	tr    trace.Tracer
}

// Build walks m top-down and returns the owned graph. It does not close m.
//
// Per-node reconstruction is infallible for a well-formed module. A panic
// raised while querying a malformed graph is recovered here and returned as
// an irerr.KindInternal error; no partial graph is returned.
func Build(ctx context.Context, m foreign.Module) (mod *llgraph.Module, err error) {
	if m == nil {
		return nil, irerr.New(irerr.PhaseReconstruct, irerr.KindInvalidInput).Detail("nil foreign module").Build()
	}

	b := &builder{
		m:    m,
		name: m.Name(),
		tr:   trace.FromContext(ctx),
	}

	span := trace.Begin(b.tr, trace.ScopeModule, "reconstruct:"+b.name, trace.CurrentSpan(ctx).SpanID)
	defer func() {
		if r := recover(); r != nil {
			mod = nil
			err = irerr.Internal(b.name, r)
			Logger().Error("reconstruction aborted", zap.String("module", b.name), zap.Error(err))
			span.End("panic")
		}
	}()

	mod = b.module(span.ID())
	span.WithExtra("functions", strconv.Itoa(len(mod.Functions))).
		WithExtra("globals", strconv.Itoa(len(mod.Globals))).
		End("")
	return mod, nil
}

func (b *builder) module(parent uint64) *llgraph.Module {
	info := llgraph.ModuleInfo{
		Name:           b.m.Name(),
		SourceFileName: b.m.SourceFileName(),
		DataLayout:     b.m.DataLayout(),
		TargetTriple:   b.m.TargetTriple(),
	}

	// Register functions up front so calls to functions defined later, and
	// recursive calls, resolve by name.
	fnHandles := b.m.Functions()
	b.funcs = make(map[foreign.Handle]string, len(fnHandles))
	for _, fh := range fnHandles {
		b.funcs[fh] = b.m.ValueName(fh)
	}

	globalHandles := b.m.Globals()
	globals := make([]*llgraph.Global, 0, len(globalHandles))
	for _, gh := range globalHandles {
		globals = append(globals, &llgraph.Global{
			Name:     b.m.ValueName(gh),
			Location: debugloc.FromHandleNoCol(b.m, gh),
		})
	}

	funcs := make([]*llgraph.Function, 0, len(fnHandles))
	for _, fh := range fnHandles {
		funcs = append(funcs, b.function(fh, parent))
	}

	return llgraph.NewModule(info, globals, funcs)
}

func (b *builder) function(fh foreign.Handle, parent uint64) *llgraph.Function {
	b.fn = b.funcs[fh]
	span := trace.Begin(b.tr, trace.ScopeNode, "function:"+b.fn, parent)

	f := &llgraph.Function{
		Name:          b.fn,
		Params:        b.m.Params(fh),
		IsDeclaration: b.m.IsDeclaration(fh),
		Location:      debugloc.FromHandleNoCol(b.m, fh),
	}
	if !f.IsDeclaration {
		blocks := b.m.Blocks(fh)
		f.Blocks = make([]*llgraph.Block, 0, len(blocks))
		for _, bh := range blocks {
			f.Blocks = append(f.Blocks, b.block(bh))
		}
	}

	span.WithExtra("blocks", strconv.Itoa(len(f.Blocks))).End("")
	b.fn = ""
	return f
}

func (b *builder) block(bh foreign.Handle) *llgraph.Block {
	insts := b.m.Instructions(bh)
	blk := &llgraph.Block{
		Name:   b.m.BlockName(bh),
		Instrs: make([]llgraph.Instruction, 0, len(insts)),
	}
	for _, ih := range insts {
		blk.Instrs = append(blk.Instrs, b.classifyInstruction(ih))
	}
	if th := b.m.Terminator(bh); th.Valid() {
		blk.Term = b.classifyTerminator(th)
	} else {
		Logger().Warn("block without terminator",
			zap.String("module", b.name),
			zap.String("function", b.fn),
			zap.String("block", blk.Name))
	}
	return blk
}
