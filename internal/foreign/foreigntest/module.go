// Package foreigntest provides a scripted in-memory foreign.Module for tests.
//
// It lets tests build handle graphs the real parsers never produce: debug
// records with a line but no filename, terminator-less blocks, handles that
// panic when queried.
package foreigntest

import (
	"fmt"

	"irgraph/internal/foreign"
)

// DebugLoc is the raw debug record attached to a scripted node. Empty strings
// mean "absent", mirroring what the native query functions return.
type DebugLoc struct {
	Filename  string
	Directory string
	Line      uint32
	Column    uint32
}

// Asm describes a scripted inline-assembly value.
type Asm struct {
	Assembly          string
	Constraints       string
	HasSideEffects    bool
	CanUnwind         bool
	NeedsAlignedStack bool
	Dialect           foreign.Dialect
}

type node struct {
	kind     foreign.Kind
	opcode   foreign.Opcode
	name     string
	global   bool
	decl     bool
	params   []string
	children []foreign.Handle // blocks of a function, instructions of a block
	term     foreign.Handle
	loc      DebugLoc
	callee   foreign.Handle
	tail     bool
	args     int
	operands int
	asm      Asm
	succs    []foreign.Handle
	cond     bool
	panics   bool
}

// Module is a scripted foreign.Module.
type Module struct {
	name    string
	srcName string
	layout  string
	triple  string
	nodes   []node // index 0 is the null handle
	globals []foreign.Handle
	funcs   []foreign.Handle
	closed  bool
	queries int
}

var _ foreign.Module = (*Module)(nil)

// New creates an empty scripted module.
func New(name string) *Module {
	return &Module{
		name:    name,
		srcName: name,
		nodes:   make([]node, 1),
	}
}

// SetTarget sets the data layout and triple.
func (m *Module) SetTarget(layout, triple string) *Module {
	m.layout = layout
	m.triple = triple
	return m
}

func (m *Module) add(n node) foreign.Handle {
	m.nodes = append(m.nodes, n)
	return foreign.Handle(len(m.nodes) - 1)
}

// AddGlobal appends a global variable.
func (m *Module) AddGlobal(name string, loc DebugLoc) foreign.Handle {
	h := m.add(node{kind: foreign.KindGlobal, name: name, global: true, loc: loc})
	m.globals = append(m.globals, h)
	return h
}

// AddFunction appends a function definition. A function without blocks is
// reported as a declaration.
func (m *Module) AddFunction(name string, loc DebugLoc, params ...string) foreign.Handle {
	h := m.add(node{kind: foreign.KindFunction, name: name, global: true, loc: loc, params: params, decl: true})
	m.funcs = append(m.funcs, h)
	return h
}

// AddBlock appends a basic block to fn.
func (m *Module) AddBlock(fn foreign.Handle, name string) foreign.Handle {
	h := m.add(node{kind: foreign.KindBlock, name: name})
	f := &m.nodes[fn]
	f.children = append(f.children, h)
	f.decl = false
	return h
}

// AddInstruction appends a generic instruction to bb.
func (m *Module) AddInstruction(bb foreign.Handle, op foreign.Opcode, name string, loc DebugLoc) foreign.Handle {
	h := m.add(node{kind: foreign.KindInstruction, opcode: op, name: name, loc: loc})
	b := &m.nodes[bb]
	b.children = append(b.children, h)
	return h
}

// AddCall appends a call instruction with the given callee to bb.
func (m *Module) AddCall(bb, callee foreign.Handle, name string, args int, loc DebugLoc) foreign.Handle {
	h := m.AddInstruction(bb, foreign.OpCall, name, loc)
	n := &m.nodes[h]
	n.callee = callee
	n.args = args
	n.operands = args + 1
	return h
}

// SetTail marks a call as a tail call.
func (m *Module) SetTail(call foreign.Handle) {
	m.nodes[call].tail = true
}

// AddInlineAsm creates an inline-assembly value usable as a callee.
func (m *Module) AddInlineAsm(a Asm) foreign.Handle {
	return m.add(node{kind: foreign.KindInlineAsm, asm: a})
}

// AddValue creates an operand value (local register, argument, constant).
func (m *Module) AddValue(name string, global bool) foreign.Handle {
	return m.add(node{kind: foreign.KindValue, name: name, global: global})
}

// SetTerminator sets bb's terminator.
func (m *Module) SetTerminator(bb foreign.Handle, op foreign.Opcode, loc DebugLoc, succs ...foreign.Handle) foreign.Handle {
	h := m.add(node{kind: foreign.KindTerminator, opcode: op, loc: loc, succs: succs})
	m.nodes[bb].term = h
	return h
}

// SetConditional marks a br terminator as conditional.
func (m *Module) SetConditional(term foreign.Handle) {
	m.nodes[term].cond = true
}

// SetOperands overrides the operand count of h.
func (m *Module) SetOperands(h foreign.Handle, n int) {
	m.nodes[h].operands = n
}

// SetCallee sets the callee of a call-shaped terminator such as invoke.
func (m *Module) SetCallee(term, callee foreign.Handle, args int) {
	n := &m.nodes[term]
	n.callee = callee
	n.args = args
}

// PanicOn makes every query about h panic, simulating a corrupt native graph.
func (m *Module) PanicOn(h foreign.Handle) {
	m.nodes[h].panics = true
}

// Closed reports whether Close was called.
func (m *Module) Closed() bool { return m.closed }

// Queries returns the number of handle queries answered so far.
func (m *Module) Queries() int { return m.queries }

func (m *Module) get(h foreign.Handle) *node {
	if m.closed {
		panic(fmt.Sprintf("foreigntest: handle %d used after Close", h))
	}
	if int(h) <= 0 || int(h) >= len(m.nodes) {
		panic(fmt.Sprintf("foreigntest: invalid handle %d", h))
	}
	n := &m.nodes[h]
	if n.panics {
		panic(fmt.Sprintf("foreigntest: corrupt node %d", h))
	}
	m.queries++
	return n
}

func (m *Module) Name() string           { return m.name }
func (m *Module) SourceFileName() string { return m.srcName }
func (m *Module) DataLayout() string     { return m.layout }
func (m *Module) TargetTriple() string   { return m.triple }

func (m *Module) Globals() []foreign.Handle {
	return append([]foreign.Handle(nil), m.globals...)
}

func (m *Module) Functions() []foreign.Handle {
	return append([]foreign.Handle(nil), m.funcs...)
}

func (m *Module) Blocks(fn foreign.Handle) []foreign.Handle {
	return append([]foreign.Handle(nil), m.get(fn).children...)
}

func (m *Module) Instructions(bb foreign.Handle) []foreign.Handle {
	return append([]foreign.Handle(nil), m.get(bb).children...)
}

func (m *Module) Terminator(bb foreign.Handle) foreign.Handle { return m.get(bb).term }

func (m *Module) Kind(h foreign.Handle) foreign.Kind {
	if !h.Valid() {
		return foreign.KindInvalid
	}
	return m.get(h).kind
}

func (m *Module) Opcode(h foreign.Handle) foreign.Opcode { return m.get(h).opcode }
func (m *Module) ValueName(h foreign.Handle) string      { return m.get(h).name }
func (m *Module) IsGlobalValue(h foreign.Handle) bool    { return m.get(h).global }
func (m *Module) IsDeclaration(fn foreign.Handle) bool   { return m.get(fn).decl }

func (m *Module) Params(fn foreign.Handle) []string {
	return append([]string(nil), m.get(fn).params...)
}

func (m *Module) BlockName(bb foreign.Handle) string { return m.get(bb).name }
func (m *Module) NumOperands(h foreign.Handle) int   { return m.get(h).operands }

func (m *Module) DebugLocFilename(h foreign.Handle) (string, bool) {
	n := m.get(h)
	return n.loc.Filename, n.loc.Filename != ""
}

func (m *Module) DebugLocDirectory(h foreign.Handle) (string, bool) {
	n := m.get(h)
	return n.loc.Directory, n.loc.Directory != ""
}

func (m *Module) DebugLocLine(h foreign.Handle) uint32 { return m.get(h).loc.Line }

func (m *Module) DebugLocColumn(h foreign.Handle) uint32 {
	n := m.get(h)
	if !n.kind.HasColumn() {
		panic(fmt.Sprintf("foreigntest: column queried on %s handle %d", n.kind, h))
	}
	return n.loc.Column
}

func (m *Module) CalledValue(call foreign.Handle) foreign.Handle { return m.get(call).callee }
func (m *Module) IsTailCall(call foreign.Handle) bool            { return m.get(call).tail }
func (m *Module) NumArgOperands(call foreign.Handle) int         { return m.get(call).args }

func (m *Module) IsInlineAsm(h foreign.Handle) bool {
	if !h.Valid() {
		return false
	}
	return m.get(h).kind == foreign.KindInlineAsm
}

func (m *Module) InlineAsmString(h foreign.Handle) string      { return m.get(h).asm.Assembly }
func (m *Module) InlineAsmConstraints(h foreign.Handle) string { return m.get(h).asm.Constraints }
func (m *Module) InlineAsmHasSideEffects(h foreign.Handle) bool {
	return m.get(h).asm.HasSideEffects
}
func (m *Module) InlineAsmCanUnwind(h foreign.Handle) bool { return m.get(h).asm.CanUnwind }
func (m *Module) InlineAsmNeedsAlignedStack(h foreign.Handle) bool {
	return m.get(h).asm.NeedsAlignedStack
}
func (m *Module) InlineAsmDialect(h foreign.Handle) foreign.Dialect { return m.get(h).asm.Dialect }

func (m *Module) Successors(term foreign.Handle) []foreign.Handle {
	return append([]foreign.Handle(nil), m.get(term).succs...)
}

func (m *Module) IsConditional(br foreign.Handle) bool { return m.get(br).cond }

func (m *Module) Close() error {
	m.closed = true
	return nil
}

// Loader serves prepared modules by name and fails for everything else.
type Loader struct {
	Modules map[string]*Module
	Err     error
}

// LoadFile returns the module registered under path.
func (l *Loader) LoadFile(path string) (foreign.Module, error) {
	return l.lookup(path)
}

// LoadBytes returns the module registered under name; data is ignored.
func (l *Loader) LoadBytes(name string, _ []byte) (foreign.Module, error) {
	return l.lookup(name)
}

func (l *Loader) lookup(name string) (foreign.Module, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	m, ok := l.Modules[name]
	if !ok {
		return nil, fmt.Errorf("foreigntest: no module %q", name)
	}
	return m, nil
}
