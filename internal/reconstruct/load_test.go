package reconstruct

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irgraph/internal/foreign/foreigntest"
	"irgraph/internal/foreign/llirmod"
	"irgraph/internal/irerr"
	"irgraph/internal/llgraph"
)

func TestLoad_ClosesForeignModule(t *testing.T) {
	fm := inlineAsmModule()
	loader := &foreigntest.Loader{Modules: map[string]*foreigntest.Module{"a.ll": fm}}

	mod, err := Load(context.Background(), loader, "a.ll")
	require.NoError(t, err)
	assert.True(t, fm.Closed())

	// the graph is owned and outlives the foreign module
	f, ok := mod.Func("inlineasm")
	require.True(t, ok)
	assert.Len(t, f.Entry().Calls(), 2)
}

func TestLoad_ClosesOnInternalError(t *testing.T) {
	fm := inlineAsmModule()
	fm.PanicOn(fm.Functions()[0])
	loader := &foreigntest.Loader{Modules: map[string]*foreigntest.Module{"a.ll": fm}}

	mod, err := Load(context.Background(), loader, "a.ll")
	assert.Nil(t, mod)
	assert.ErrorIs(t, err, irerr.ErrInternal)
	assert.True(t, fm.Closed())
}

func TestLoad_Failure(t *testing.T) {
	cause := errors.New("bad magic")
	loader := &foreigntest.Loader{Err: cause}

	mod, err := Load(context.Background(), loader, "x.bc")
	assert.Nil(t, mod)
	assert.ErrorIs(t, err, irerr.ErrLoadFailure)
	assert.ErrorIs(t, err, cause)
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, &foreigntest.Loader{}, "a.ll")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadBytes_TextualInlineAsm(t *testing.T) {
	const text = `
define void @inlineasm(i32 %arg) {
entry:
  %a = call i32 asm "bswap $0", "=r,r"(i32 %arg)
  %b = call i32 asm sideeffect "blt $1, $2, $3", "=r,r,rm"(i32 %arg, i32 %arg)
  ret void
}
`
	mod, err := LoadBytes(context.Background(), llirmod.Loader{}, "inlineasm.ll", []byte(text))
	require.NoError(t, err)

	f, ok := mod.Func("inlineasm")
	require.True(t, ok)
	calls := f.Entry().Calls()
	require.Len(t, calls, 2)

	kinds := make([]string, len(calls))
	for i, c := range calls {
		kinds[i] = llgraph.MatchCallee(c.Callee,
			func(llgraph.ValueRef) string { return "value" },
			func(a *llgraph.InlineAssembly) string { return a.Assembly },
		)
	}
	assert.Equal(t, []string{"bswap $0", "blt $1, $2, $3"}, kinds)
	asm, _ := calls[1].InlineAsm()
	assert.True(t, asm.HasSideEffects)
	assert.Equal(t, "=r,r,rm", asm.Constraints)
}

func TestLoad_InlineAsmUnwindFlag(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "ir", "unwind.ll")
	mod, err := Load(context.Background(), llirmod.Loader{}, path)
	require.NoError(t, err)

	f, ok := mod.Func("guarded")
	require.True(t, ok)
	calls := f.Entry().Calls()
	require.Len(t, calls, 2)

	asm, ok := calls[0].InlineAsm()
	require.True(t, ok)
	assert.Equal(t, llgraph.InlineAssembly{
		Assembly:          "nop",
		HasSideEffects:    true,
		CanUnwind:         true,
		NeedsAlignedStack: true,
		Dialect:           llgraph.DialectIntel,
	}, *asm)

	asm, ok = calls[1].InlineAsm()
	require.True(t, ok)
	assert.False(t, asm.CanUnwind)

	inv, ok := f.Entry().Term.(*llgraph.Invoke)
	require.True(t, ok)
	invAsm, ok := inv.Callee.(*llgraph.InlineAssembly)
	require.True(t, ok)
	assert.True(t, invAsm.CanUnwind)
	assert.Equal(t, []string{"done", "lpad"}, inv.Successors())
}

func TestLoad_ParityFixture(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "ir", "parity.ll")
	mod, err := Load(context.Background(), llirmod.Loader{}, path)
	require.NoError(t, err)

	assert.Equal(t, "parity.c", mod.SourceFileName)
	assert.Equal(t, []string{"odd"}, mod.Callers("even"))
	assert.Equal(t, []string{"even"}, mod.Callers("odd"))

	even, _ := mod.Func("even")
	loc, ok := even.Location.Get()
	require.True(t, ok)
	assert.Equal(t, "/src/parity.c:3", loc.String())

	icmp := even.Entry().Instrs[0]
	assert.Equal(t, "icmp", icmp.Opcode())
	il, ok := icmp.Loc().Get()
	require.True(t, ok)
	assert.Equal(t, "/src/parity.c:4:7", il.String())

	odd, _ := mod.Func("odd")
	assert.True(t, odd.Entry().Instrs[0].Loc().IsNone())

	ext, _ := mod.Func("ext")
	assert.True(t, ext.IsDeclaration)
}

func TestLoad_TruncatedInput(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "ir", "truncated.ll")
	mod, err := Load(context.Background(), llirmod.Loader{}, path)
	assert.Nil(t, mod)
	assert.ErrorIs(t, err, irerr.ErrLoadFailure)
}
