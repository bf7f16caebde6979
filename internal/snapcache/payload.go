package snapcache

import (
	"irgraph/internal/debugloc"
	"irgraph/internal/foreign"
	"irgraph/internal/llgraph"
	"irgraph/internal/opt"
)

// Payload is the on-disk form of a module. The graph's sealed interfaces are
// flattened into tagged structs.
type Payload struct {
	Schema    uint16
	Info      llgraph.ModuleInfo
	Globals   []GlobalRec
	Functions []FuncRec
}

type LocRec struct {
	Line     uint32
	Col      *uint32
	Filename string
	Dir      *string
}

type GlobalRec struct {
	Name string
	Loc  *LocRec
}

type FuncRec struct {
	Name   string
	Params []string
	Decl   bool
	Loc    *LocRec
	Blocks []BlockRec
}

type BlockRec struct {
	Name   string
	Instrs []InstrRec
	Term   *TermRec
}

type CalleeRec struct {
	Asm         bool
	Name        string
	Global      bool
	Assembly    string
	Constraints string
	SideEffects bool
	Unwind      bool
	AlignStack  bool
	Dialect     uint8
}

type InstrRec struct {
	Call    bool
	Op      string
	Name    string
	Callee  *CalleeRec
	NumArgs int
	Tail    bool
	Loc     *LocRec
}

type TermRec struct {
	Op       string
	Cond     bool
	Name     string
	Targets  []string
	HasValue bool
	Callee   *CalleeRec
	NumArgs  int
	Loc      *LocRec
}

// Encode flattens m.
func Encode(m *llgraph.Module) *Payload {
	p := &Payload{Schema: schemaVersion, Info: m.ModuleInfo}
	for _, g := range m.Globals {
		p.Globals = append(p.Globals, GlobalRec{Name: g.Name, Loc: encodeLoc(g.Location)})
	}
	for _, f := range m.Functions {
		fr := FuncRec{Name: f.Name, Params: f.Params, Decl: f.IsDeclaration, Loc: encodeLoc(f.Location)}
		for _, b := range f.Blocks {
			br := BlockRec{Name: b.Name, Term: encodeTerm(b.Term)}
			for _, in := range b.Instrs {
				br.Instrs = append(br.Instrs, encodeInstr(in))
			}
			fr.Blocks = append(fr.Blocks, br)
		}
		p.Functions = append(p.Functions, fr)
	}
	return p
}

func encodeLoc(v opt.Value[debugloc.Loc]) *LocRec {
	l, ok := v.Get()
	if !ok {
		return nil
	}
	return &LocRec{Line: l.Line, Col: l.Col.Ptr(), Filename: l.Filename, Dir: l.Directory.Ptr()}
}

func encodeCallee(c llgraph.Callee) *CalleeRec {
	return llgraph.MatchCallee(c,
		func(r llgraph.ValueRef) *CalleeRec {
			return &CalleeRec{Name: r.Name, Global: r.Global}
		},
		func(a *llgraph.InlineAssembly) *CalleeRec {
			return &CalleeRec{
				Asm:         true,
				Assembly:    a.Assembly,
				Constraints: a.Constraints,
				SideEffects: a.HasSideEffects,
				Unwind:      a.CanUnwind,
				AlignStack:  a.NeedsAlignedStack,
				Dialect:     uint8(a.Dialect),
			}
		})
}

func encodeInstr(in llgraph.Instruction) InstrRec {
	switch in := in.(type) {
	case *llgraph.Call:
		return InstrRec{
			Call:    true,
			Op:      in.Opcode(),
			Name:    in.Name,
			Callee:  encodeCallee(in.Callee),
			NumArgs: in.NumArgs,
			Tail:    in.Tail,
			Loc:     encodeLoc(in.Location),
		}
	default:
		return InstrRec{Op: in.Opcode(), Name: in.Result(), Loc: encodeLoc(in.Loc())}
	}
}

func encodeTerm(t llgraph.Terminator) *TermRec {
	if t == nil {
		return nil
	}
	r := &TermRec{Op: t.Opcode(), Targets: t.Successors(), Loc: encodeLoc(t.Loc())}
	switch t := t.(type) {
	case *llgraph.Ret:
		r.HasValue = t.HasValue
	case *llgraph.CondBr:
		r.Cond = true
	case *llgraph.Invoke:
		r.Name = t.Name
		r.Callee = encodeCallee(t.Callee)
		r.NumArgs = t.NumArgs
	}
	return r
}

// Decode rebuilds the graph, including its name indexes.
func Decode(p *Payload) *llgraph.Module {
	globals := make([]*llgraph.Global, 0, len(p.Globals))
	for _, g := range p.Globals {
		globals = append(globals, &llgraph.Global{Name: g.Name, Location: decodeLoc(g.Loc)})
	}
	funcs := make([]*llgraph.Function, 0, len(p.Functions))
	for _, fr := range p.Functions {
		f := &llgraph.Function{Name: fr.Name, Params: fr.Params, IsDeclaration: fr.Decl, Location: decodeLoc(fr.Loc)}
		for _, br := range fr.Blocks {
			b := &llgraph.Block{Name: br.Name}
			for _, ir := range br.Instrs {
				b.Instrs = append(b.Instrs, decodeInstr(ir))
			}
			b.Term = decodeTerm(br.Term)
			f.Blocks = append(f.Blocks, b)
		}
		funcs = append(funcs, f)
	}
	return llgraph.NewModule(p.Info, globals, funcs)
}

func decodeLoc(r *LocRec) opt.Value[debugloc.Loc] {
	if r == nil {
		return opt.None[debugloc.Loc]()
	}
	return opt.Some(debugloc.Loc{
		Line:      r.Line,
		Col:       opt.FromPtr(r.Col),
		Filename:  r.Filename,
		Directory: opt.FromPtr(r.Dir),
	})
}

func decodeCallee(r *CalleeRec) llgraph.Callee {
	if r == nil {
		return llgraph.ValueRef{}
	}
	if r.Asm {
		return &llgraph.InlineAssembly{
			Assembly:          r.Assembly,
			Constraints:       r.Constraints,
			HasSideEffects:    r.SideEffects,
			CanUnwind:         r.Unwind,
			NeedsAlignedStack: r.AlignStack,
			Dialect:           foreign.Dialect(r.Dialect),
		}
	}
	return llgraph.ValueRef{Name: r.Name, Global: r.Global}
}

func decodeInstr(r InstrRec) llgraph.Instruction {
	if r.Call {
		return &llgraph.Call{
			Name:     r.Name,
			Callee:   decodeCallee(r.Callee),
			NumArgs:  r.NumArgs,
			Tail:     r.Tail,
			Location: decodeLoc(r.Loc),
		}
	}
	return &llgraph.Other{Op: r.Op, Name: r.Name, Location: decodeLoc(r.Loc)}
}

func decodeTerm(r *TermRec) llgraph.Terminator {
	if r == nil {
		return nil
	}
	loc := decodeLoc(r.Loc)
	at := func(i int) string {
		if i < len(r.Targets) {
			return r.Targets[i]
		}
		return ""
	}
	switch {
	case r.Op == "ret":
		return &llgraph.Ret{HasValue: r.HasValue, Location: loc}
	case r.Op == "br" && r.Cond:
		return &llgraph.CondBr{TrueTarget: at(0), FalseTarget: at(1), Location: loc}
	case r.Op == "br":
		return &llgraph.Br{Target: at(0), Location: loc}
	case r.Op == "switch":
		var cases []string
		if len(r.Targets) > 1 {
			cases = r.Targets[1:]
		}
		return &llgraph.Switch{Default: at(0), Cases: cases, Location: loc}
	case r.Op == "unreachable":
		return &llgraph.Unreachable{Location: loc}
	case r.Op == "invoke":
		return &llgraph.Invoke{
			Name:     r.Name,
			Callee:   decodeCallee(r.Callee),
			NumArgs:  r.NumArgs,
			Normal:   at(0),
			Unwind:   at(1),
			Location: loc,
		}
	default:
		return &llgraph.OtherTerm{Op: r.Op, Targets: r.Targets, Location: loc}
	}
}
