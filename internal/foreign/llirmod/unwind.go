package llirmod

import (
	"fmt"

	"github.com/llir/ll"
	"github.com/llir/ll/ast"
	"github.com/llir/ll/selector"
	"github.com/llir/llvm/ir"
)

// ir.InlineAsm drops the unwind keyword, so it is recovered from the parse
// tree. Every asm expression becomes its own *ir.InlineAsm and both walks
// visit bodies in source order, which lets the two sequences be zipped.

type asmFlags struct {
	sideEffect, alignStack, intel, unwind bool
}

// treeAsm lists the inline asm expressions of content in source order.
func treeAsm(path, content string) ([]asmFlags, error) {
	tree, err := ast.Parse(path, content)
	if err != nil {
		return nil, err
	}
	var out []asmFlags
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n.Type() == ll.InlineAsm {
			a := ast.InlineAsm{Node: n}
			var f asmFlags
			_, f.sideEffect = a.SideEffect()
			_, f.alignStack = a.AlignStackTok()
			_, f.intel = a.IntelDialect()
			_, f.unwind = a.Unwind()
			out = append(out, f)
			return
		}
		for _, c := range n.Children(selector.Any) {
			walk(c)
		}
	}
	walk(tree.Root())
	return out, nil
}

// moduleAsm lists the inline asm callees of m in source order.
func moduleAsm(m *ir.Module) []*ir.InlineAsm {
	var out []*ir.InlineAsm
	add := func(v any) {
		if a, ok := v.(*ir.InlineAsm); ok {
			out = append(out, a)
		}
	}
	for _, f := range m.Funcs {
		for _, b := range f.Blocks {
			for _, inst := range b.Insts {
				if c, ok := inst.(*ir.InstCall); ok {
					add(c.Callee)
				}
			}
			switch t := b.Term.(type) {
			case *ir.TermInvoke:
				add(t.Invokee)
			case *ir.TermCallBr:
				add(t.Callee)
			}
		}
	}
	return out
}

// unwindSet returns the asm expressions of m written with the unwind keyword.
func unwindSet(path, content string, m *ir.Module) (map[*ir.InlineAsm]bool, error) {
	flags, err := treeAsm(path, content)
	if err != nil {
		return nil, err
	}
	asms := moduleAsm(m)
	if len(flags) != len(asms) {
		return nil, fmt.Errorf("%s: found %d inline asm expressions but %d asm callees; unwind flags cannot be attributed", path, len(flags), len(asms))
	}
	var set map[*ir.InlineAsm]bool
	for i, a := range asms {
		f := flags[i]
		if f.sideEffect != a.SideEffect || f.alignStack != a.AlignStack || f.intel != a.IntelDialect {
			return nil, fmt.Errorf("%s: inline asm #%d does not match its parse tree entry", path, i)
		}
		if !f.unwind {
			continue
		}
		if set == nil {
			set = make(map[*ir.InlineAsm]bool)
		}
		set[a] = true
	}
	return set, nil
}
