package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"irgraph/internal/debugloc"
	"irgraph/internal/irerr"
	"irgraph/internal/llgraph"
	"irgraph/internal/opt"
)

// Dump writes m to w in format.
func Dump(w io.Writer, m *llgraph.Module, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(NewModuleDoc(m))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(NewModuleDoc(m))
		if err == nil {
			err = enc.Close()
		}
	default:
		_, err = io.WriteString(w, Text(m))
	}
	if err != nil {
		return irerr.Wrap(irerr.PhaseRender, irerr.KindInternal, err, "dump "+m.Name)
	}
	return nil
}

// Text renders m as an IR-like listing with locations in trailing comments.
func Text(m *llgraph.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; module %s\n", m.Name)
	if m.SourceFileName != "" {
		fmt.Fprintf(&b, "; source %s\n", m.SourceFileName)
	}
	if m.TargetTriple != "" {
		fmt.Fprintf(&b, "; triple %s\n", m.TargetTriple)
	}

	if len(m.Globals) > 0 {
		b.WriteByte('\n')
	}
	for _, g := range m.Globals {
		line(&b, "@"+g.Name, g.Location)
	}

	for _, f := range m.Functions {
		b.WriteByte('\n')
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = "%" + p
		}
		sig := fmt.Sprintf("@%s(%s)", f.Name, strings.Join(params, ", "))
		if f.IsDeclaration {
			line(&b, "declare "+sig, f.Location)
			continue
		}
		line(&b, "define "+sig+" {", f.Location)
		for i, blk := range f.Blocks {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(blk.Name + ":\n")
			for _, in := range blk.Instrs {
				line(&b, "  "+instrText(in), in.Loc())
			}
			if blk.Term == nil {
				b.WriteString("  ; no terminator\n")
			} else {
				line(&b, "  "+termText(blk.Term), blk.Term.Loc())
			}
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func line(b *strings.Builder, text string, loc opt.Value[debugloc.Loc]) {
	b.WriteString(text)
	if l, ok := loc.Get(); ok {
		b.WriteString("  ; ")
		b.WriteString(l.String())
	}
	b.WriteByte('\n')
}

// CalleeText renders a callee as it appears in a call.
func CalleeText(c llgraph.Callee) string {
	return llgraph.MatchCallee(c,
		func(r llgraph.ValueRef) string { return r.String() },
		func(a *llgraph.InlineAssembly) string {
			var b strings.Builder
			b.WriteString("asm ")
			if a.HasSideEffects {
				b.WriteString("sideeffect ")
			}
			if a.NeedsAlignedStack {
				b.WriteString("alignstack ")
			}
			if a.Dialect == llgraph.DialectIntel {
				b.WriteString("inteldialect ")
			}
			if a.CanUnwind {
				b.WriteString("unwind ")
			}
			fmt.Fprintf(&b, "%q, %q", a.Assembly, a.Constraints)
			return b.String()
		})
}

func result(name string) string {
	if name == "" {
		return ""
	}
	return "%" + name + " = "
}

func instrText(in llgraph.Instruction) string {
	c, ok := in.(*llgraph.Call)
	if !ok {
		return result(in.Result()) + in.Opcode()
	}
	tail := ""
	if c.Tail {
		tail = "tail "
	}
	return fmt.Sprintf("%s%scall %s (%d args)", result(c.Name), tail, CalleeText(c.Callee), c.NumArgs)
}

func labels(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "%" + n
	}
	return strings.Join(out, ", ")
}

func termText(t llgraph.Terminator) string {
	switch t := t.(type) {
	case *llgraph.Ret:
		if t.HasValue {
			return "ret <value>"
		}
		return "ret void"
	case *llgraph.Invoke:
		return fmt.Sprintf("%sinvoke %s (%d args) to %%%s unwind %%%s",
			result(t.Name), CalleeText(t.Callee), t.NumArgs, t.Normal, t.Unwind)
	case *llgraph.CondBr:
		return "br <cond>, " + labels(t.Successors())
	}
	if succs := t.Successors(); len(succs) > 0 {
		return t.Opcode() + " " + labels(succs)
	}
	return t.Opcode()
}
