package debugloc

import (
	"errors"
	"testing"

	"irgraph/internal/foreign"
	"irgraph/internal/foreign/foreigntest"
	"irgraph/internal/irerr"
	"irgraph/internal/opt"
)

type fixture struct {
	m     *foreigntest.Module
	fn    foreign.Handle
	glob  foreign.Handle
	inst  foreign.Handle
	term  foreign.Handle
	bare  foreign.Handle
	nodir foreign.Handle
}

func newFixture() fixture {
	m := foreigntest.New("t.ll")
	f := fixture{m: m}
	f.glob = m.AddGlobal("g", foreigntest.DebugLoc{Filename: "g.c", Directory: "/src", Line: 1})
	f.fn = m.AddFunction("main", foreigntest.DebugLoc{Filename: "main.c", Directory: "/src", Line: 10})
	bb := m.AddBlock(f.fn, "entry")
	f.inst = m.AddInstruction(bb, "alloca", "x", foreigntest.DebugLoc{Filename: "main.c", Directory: "/src", Line: 11, Column: 7})
	// line and directory are reported but filename is not
	f.bare = m.AddInstruction(bb, "load", "y", foreigntest.DebugLoc{Directory: "/src", Line: 12, Column: 3})
	f.nodir = m.AddInstruction(bb, "store", "", foreigntest.DebugLoc{Filename: "main.c", Line: 13, Column: 1})
	f.term = m.SetTerminator(bb, foreign.OpRet, foreigntest.DebugLoc{Filename: "main.c", Directory: "/src", Line: 14, Column: 2})
	return f
}

func TestFromHandleNoCol(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		h    foreign.Handle
		want opt.Value[Loc]
	}{
		{"function", f.fn, opt.Some(Loc{Line: 10, Filename: "main.c", Directory: opt.Some("/src")})},
		{"global", f.glob, opt.Some(Loc{Line: 1, Filename: "g.c", Directory: opt.Some("/src")})},
		{"instruction without column", f.inst, opt.Some(Loc{Line: 11, Filename: "main.c", Directory: opt.Some("/src")})},
		{"missing filename", f.bare, opt.None[Loc]()},
		{"missing directory", f.nodir, opt.Some(Loc{Line: 13, Filename: "main.c"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromHandleNoCol(f.m, tt.h); got != tt.want {
				t.Fatalf("FromHandleNoCol = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromHandleWithCol(t *testing.T) {
	f := newFixture()

	got, ok := FromHandleWithCol(f.m, f.inst).Get()
	if !ok {
		t.Fatal("expected a location")
	}
	want := Loc{Line: 11, Col: opt.Some[uint32](7), Filename: "main.c", Directory: opt.Some("/src")}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	term, ok := FromHandleWithCol(f.m, f.term).Get()
	if !ok || term.Col != opt.Some[uint32](2) {
		t.Fatalf("terminator location = %+v", term)
	}

	if FromHandleWithCol(f.m, f.bare).IsSome() {
		t.Fatal("no filename must mean no location even with a column available")
	}
}

func TestFromHandleWithCol_WrongKindPanics(t *testing.T) {
	f := newFixture()
	for _, h := range []foreign.Handle{f.fn, f.glob} {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, irerr.ErrPrecondition) {
					t.Fatalf("expected precondition panic, got %v", r)
				}
			}()
			FromHandleWithCol(f.m, h)
		}()
	}
}

func TestFromHandle_Deterministic(t *testing.T) {
	f := newFixture()
	for _, h := range []foreign.Handle{f.fn, f.glob, f.inst, f.term, f.bare, f.nodir} {
		if FromHandle(f.m, h) != FromHandle(f.m, h) {
			t.Fatalf("handle %d reconstructed differently twice", h)
		}
	}
	if loc, _ := FromHandle(f.m, f.fn).Get(); loc.Col.IsSome() {
		t.Fatal("function locations carry no column")
	}
	if loc, _ := FromHandle(f.m, f.inst).Get(); loc.Col.IsNone() {
		t.Fatal("instruction locations carry a column")
	}
}
