// Package testkit holds structural checks shared by tests that produce graphs
// from real parser input.
package testkit

import (
	"errors"
	"fmt"

	"irgraph/internal/debugloc"
	"irgraph/internal/llgraph"
	"irgraph/internal/opt"
)

// CheckGraphInvariants verifies the shape every reconstructed graph must
// have:
//  1. globals and functions are uniquely named and found by lookup
//  2. declarations have no blocks, definitions have an entry block
//  3. every block has a terminator whose successors name blocks of the same
//     function
//  4. every call has exactly one callee case
//  5. globals and functions carry no column; Module.Locations is strictly
//     ascending
//
// All violations are returned joined.
func CheckGraphInvariants(m *llgraph.Module) error {
	if m == nil {
		return errors.New("nil module")
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	seenGlobals := make(map[string]bool, len(m.Globals))
	for _, g := range m.Globals {
		if seenGlobals[g.Name] {
			fail("duplicate global @%s", g.Name)
		}
		seenGlobals[g.Name] = true
		if got, ok := m.Global(g.Name); !ok || got != g {
			fail("global @%s not found by lookup", g.Name)
		}
		if hasCol(g.Location) {
			fail("global @%s location has a column", g.Name)
		}
	}

	seenFuncs := make(map[string]bool, len(m.Functions))
	for _, f := range m.Functions {
		if seenFuncs[f.Name] {
			fail("duplicate function @%s", f.Name)
		}
		seenFuncs[f.Name] = true
		if got, ok := m.Func(f.Name); !ok || got != f {
			fail("function @%s not found by lookup", f.Name)
		}
		if hasCol(f.Location) {
			fail("function @%s location has a column", f.Name)
		}
		switch {
		case f.IsDeclaration && len(f.Blocks) > 0:
			fail("declaration @%s has %d blocks", f.Name, len(f.Blocks))
		case !f.IsDeclaration && f.Entry() == nil:
			fail("definition @%s has no entry block", f.Name)
		}
		for _, b := range f.Blocks {
			checkBlock(f, b, fail)
		}
	}

	locs := m.Locations()
	for i := 1; i < len(locs); i++ {
		if debugloc.Compare(locs[i-1], locs[i]) >= 0 {
			fail("locations not strictly ascending at %d: %s, %s", i, locs[i-1], locs[i])
		}
	}
	return errors.Join(errs...)
}

func checkBlock(f *llgraph.Function, b *llgraph.Block, fail func(string, ...any)) {
	if b.Term == nil {
		fail("@%s block %%%s has no terminator", f.Name, b.Name)
	} else {
		for _, succ := range b.Term.Successors() {
			if _, ok := f.Block(succ); !ok {
				fail("@%s block %%%s branches to unknown block %%%s", f.Name, b.Name, succ)
			}
		}
	}
	for i, c := range b.Calls() {
		if c.Callee == nil {
			fail("@%s block %%%s call %d has no callee", f.Name, b.Name, i)
			continue
		}
		// MatchCallee panics on an unknown case
		llgraph.MatchCallee(c.Callee,
			func(llgraph.ValueRef) bool { return true },
			func(*llgraph.InlineAssembly) bool { return true },
		)
	}
}

func hasCol(v opt.Value[debugloc.Loc]) bool {
	l, ok := v.Get()
	return ok && l.Col.IsSome()
}
