package llgraph

import (
	"irgraph/internal/debugloc"
	"irgraph/internal/opt"
)

// Global is a module-level variable.
type Global struct {
	Name     string
	Location opt.Value[debugloc.Loc]
}

// Block is a basic block. Instrs are in source order; Term may be nil only in
// a malformed module.
type Block struct {
	Name   string
	Instrs []Instruction
	Term   Terminator
}

// Calls returns the block's call instructions in order.
func (b *Block) Calls() []*Call {
	var out []*Call
	for _, in := range b.Instrs {
		if c, ok := in.(*Call); ok {
			out = append(out, c)
		}
	}
	return out
}

// Function is a function definition or declaration.
type Function struct {
	Name          string
	Params        []string
	IsDeclaration bool
	Location      opt.Value[debugloc.Loc]
	Blocks        []*Block

	blockIndex map[string]int
}

// Block looks up a block by name.
func (f *Function) Block(name string) (*Block, bool) {
	if f.blockIndex == nil {
		for _, b := range f.Blocks {
			if b.Name == name {
				return b, true
			}
		}
		return nil, false
	}
	i, ok := f.blockIndex[name]
	if !ok {
		return nil, false
	}
	return f.Blocks[i], true
}

// Entry returns the entry block, or nil for a declaration.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// NumInstrs counts instructions plus terminators.
func (f *Function) NumInstrs() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Instrs)
		if b.Term != nil {
			n++
		}
	}
	return n
}

func (f *Function) index() {
	f.blockIndex = make(map[string]int, len(f.Blocks))
	for i, b := range f.Blocks {
		if _, dup := f.blockIndex[b.Name]; !dup {
			f.blockIndex[b.Name] = i
		}
	}
}

// ModuleInfo carries module-level attributes.
type ModuleInfo struct {
	Name           string
	SourceFileName string
	DataLayout     string
	TargetTriple   string
}

// Module is a reconstructed IR module.
type Module struct {
	ModuleInfo
	Globals   []*Global
	Functions []*Function

	funcIndex   map[string]int
	globalIndex map[string]int
}

// NewModule assembles a module and builds its name indexes. The slices are
// owned by the module afterwards. When two entries share a name the first one
// wins lookups.
func NewModule(info ModuleInfo, globals []*Global, funcs []*Function) *Module {
	m := &Module{
		ModuleInfo:  info,
		Globals:     globals,
		Functions:   funcs,
		funcIndex:   make(map[string]int, len(funcs)),
		globalIndex: make(map[string]int, len(globals)),
	}
	for i, f := range funcs {
		f.index()
		if _, dup := m.funcIndex[f.Name]; !dup {
			m.funcIndex[f.Name] = i
		}
	}
	for i, g := range globals {
		if _, dup := m.globalIndex[g.Name]; !dup {
			m.globalIndex[g.Name] = i
		}
	}
	return m
}

// Func returns the function named name.
func (m *Module) Func(name string) (*Function, bool) {
	i, ok := m.funcIndex[name]
	if !ok {
		return nil, false
	}
	return m.Functions[i], true
}

// Global returns the global named name.
func (m *Module) Global(name string) (*Global, bool) {
	i, ok := m.globalIndex[name]
	if !ok {
		return nil, false
	}
	return m.Globals[i], true
}

// ResolveCallee follows an ordinary callee reference to a function of this
// module. Inline asm, indirect calls and external symbols resolve to false.
func (m *Module) ResolveCallee(c Callee) (*Function, bool) {
	ref, ok := c.(ValueRef)
	if !ok || !ref.Global {
		return nil, false
	}
	return m.Func(ref.Name)
}

// CallSite is a call instruction with its position in the module.
type CallSite struct {
	Function string
	Block    string
	Index    int
	Call     *Call
}

// Calls lists every call instruction in module order.
func (m *Module) Calls() []CallSite {
	var out []CallSite
	for _, f := range m.Functions {
		for _, b := range f.Blocks {
			for i, in := range b.Instrs {
				if c, ok := in.(*Call); ok {
					out = append(out, CallSite{Function: f.Name, Block: b.Name, Index: i, Call: c})
				}
			}
		}
	}
	return out
}

// Callers returns the names of functions that call name directly, in module
// order and without duplicates.
func (m *Module) Callers(name string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, cs := range m.Calls() {
		ref, ok := cs.Call.Target()
		if !ok || !ref.Global || ref.Name != name || seen[cs.Function] {
			continue
		}
		seen[cs.Function] = true
		out = append(out, cs.Function)
	}
	return out
}

// Locations returns every distinct location in the module, sorted.
func (m *Module) Locations() []debugloc.Loc {
	set := debugloc.NewSet()
	add := func(l opt.Value[debugloc.Loc]) {
		if loc, ok := l.Get(); ok {
			set.Add(loc)
		}
	}
	for _, g := range m.Globals {
		add(g.Location)
	}
	for _, f := range m.Functions {
		add(f.Location)
		for _, b := range f.Blocks {
			for _, in := range b.Instrs {
				add(in.Loc())
			}
			if b.Term != nil {
				add(b.Term.Loc())
			}
		}
	}
	return set.Sorted()
}

// Visitor receives nodes during Walk. Returning false from VisitFunction
// skips the function's blocks.
type Visitor interface {
	VisitGlobal(g *Global)
	VisitFunction(f *Function) bool
	VisitBlock(f *Function, b *Block)
	VisitInstruction(f *Function, b *Block, in Instruction)
	VisitTerminator(f *Function, b *Block, t Terminator)
}

// Walk visits the module in source order.
func (m *Module) Walk(v Visitor) {
	for _, g := range m.Globals {
		v.VisitGlobal(g)
	}
	for _, f := range m.Functions {
		if !v.VisitFunction(f) {
			continue
		}
		for _, b := range f.Blocks {
			v.VisitBlock(f, b)
			for _, in := range b.Instrs {
				v.VisitInstruction(f, b, in)
			}
			if b.Term != nil {
				v.VisitTerminator(f, b, b.Term)
			}
		}
	}
}
