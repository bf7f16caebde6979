package llirmod

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irgraph/internal/foreign"
)

type node struct {
	kind foreign.Kind
	obj  any
}

// module serves an *ir.Module through handles. Handle n refers to
// nodes[n-1]; objects are interned so the same object keeps its handle.
type module struct {
	name   string
	m      *ir.Module
	nodes  []node
	ids    map[any]foreign.Handle
	unwind map[*ir.InlineAsm]bool
	closed bool
}

var _ foreign.Module = (*module)(nil)

func newModule(name string, m *ir.Module) *module {
	return &module{name: name, m: m, ids: make(map[any]foreign.Handle)}
}

func (m *module) intern(kind foreign.Kind, obj any) foreign.Handle {
	if h, ok := m.ids[obj]; ok {
		return h
	}
	m.nodes = append(m.nodes, node{kind: kind, obj: obj})
	h := foreign.Handle(len(m.nodes))
	m.ids[obj] = h
	return h
}

// value interns an operand, classifying it by its dynamic type.
func (m *module) value(v value.Value) foreign.Handle {
	if v == nil {
		return foreign.NoHandle
	}
	switch v := v.(type) {
	case *ir.Func:
		return m.intern(foreign.KindFunction, v)
	case *ir.Global:
		return m.intern(foreign.KindGlobal, v)
	case *ir.Block:
		return m.intern(foreign.KindBlock, v)
	case *ir.InlineAsm:
		return m.intern(foreign.KindInlineAsm, v)
	case ir.Instruction:
		return m.intern(foreign.KindInstruction, v)
	case ir.Terminator:
		return m.intern(foreign.KindTerminator, v)
	default:
		return m.intern(foreign.KindValue, v)
	}
}

func (m *module) get(h foreign.Handle) node {
	if m.closed {
		panic("llirmod: use of closed module " + m.name)
	}
	if !h.Valid() || int(h) > len(m.nodes) {
		panic(fmt.Sprintf("llirmod: invalid handle %d", h))
	}
	return m.nodes[h-1]
}

func (m *module) Name() string           { return m.name }
func (m *module) SourceFileName() string { return m.m.SourceFilename }
func (m *module) DataLayout() string     { return m.m.DataLayout }
func (m *module) TargetTriple() string   { return m.m.TargetTriple }

func (m *module) Globals() []foreign.Handle {
	hs := make([]foreign.Handle, len(m.m.Globals))
	for i, g := range m.m.Globals {
		hs[i] = m.intern(foreign.KindGlobal, g)
	}
	return hs
}

func (m *module) Functions() []foreign.Handle {
	hs := make([]foreign.Handle, len(m.m.Funcs))
	for i, f := range m.m.Funcs {
		hs[i] = m.intern(foreign.KindFunction, f)
	}
	return hs
}

func (m *module) fn(h foreign.Handle) *ir.Func {
	f, ok := m.get(h).obj.(*ir.Func)
	if !ok {
		panic(fmt.Sprintf("llirmod: handle %d is not a function", h))
	}
	return f
}

func (m *module) block(h foreign.Handle) *ir.Block {
	b, ok := m.get(h).obj.(*ir.Block)
	if !ok {
		panic(fmt.Sprintf("llirmod: handle %d is not a block", h))
	}
	return b
}

func (m *module) Blocks(fn foreign.Handle) []foreign.Handle {
	f := m.fn(fn)
	hs := make([]foreign.Handle, len(f.Blocks))
	for i, b := range f.Blocks {
		hs[i] = m.intern(foreign.KindBlock, b)
	}
	return hs
}

func (m *module) Instructions(bb foreign.Handle) []foreign.Handle {
	b := m.block(bb)
	hs := make([]foreign.Handle, len(b.Insts))
	for i, inst := range b.Insts {
		hs[i] = m.intern(foreign.KindInstruction, inst)
	}
	return hs
}

func (m *module) Terminator(bb foreign.Handle) foreign.Handle {
	b := m.block(bb)
	if b.Term == nil {
		return foreign.NoHandle
	}
	return m.intern(foreign.KindTerminator, b.Term)
}

func (m *module) Kind(h foreign.Handle) foreign.Kind { return m.get(h).kind }

func (m *module) Opcode(h foreign.Handle) foreign.Opcode {
	switch m.get(h).obj.(type) {
	case *ir.InstCall:
		return foreign.OpCall
	case *ir.TermRet:
		return foreign.OpRet
	case *ir.TermBr, *ir.TermCondBr:
		return foreign.OpBr
	case *ir.TermSwitch:
		return foreign.OpSwitch
	case *ir.TermIndirectBr:
		return foreign.OpIndirectBr
	case *ir.TermInvoke:
		return foreign.OpInvoke
	case *ir.TermCallBr:
		return foreign.OpCallBr
	case *ir.TermResume:
		return foreign.OpResume
	case *ir.TermUnreachable:
		return foreign.OpUnreachable
	case ir.Instruction, ir.Terminator:
		return opcodeFromType(m.get(h).obj)
	}
	return foreign.OpUnknown
}

// opcodeFromType derives the opcode from the llir type name, e.g.
// *ir.InstGetElementPtr becomes "getelementptr".
func opcodeFromType(obj any) foreign.Opcode {
	name := fmt.Sprintf("%T", obj)
	for _, prefix := range []string{"*ir.Inst", "*ir.Term"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			if rest == "VAArg" {
				return "va_arg"
			}
			return foreign.Opcode(strings.ToLower(rest))
		}
	}
	return foreign.OpUnknown
}

type named interface{ Name() string }

func (m *module) ValueName(h foreign.Handle) string {
	obj := m.get(h).obj
	// void results are unnamed even though the parser may assign an ID
	if v, ok := obj.(value.Value); ok && v.Type() != nil {
		if _, void := v.Type().(*types.VoidType); void {
			return ""
		}
	}
	if n, ok := obj.(named); ok {
		return n.Name()
	}
	return ""
}

func (m *module) IsGlobalValue(h foreign.Handle) bool {
	switch m.get(h).obj.(type) {
	case *ir.Func, *ir.Global, *ir.Alias, *ir.IFunc:
		return true
	}
	return false
}

func (m *module) IsDeclaration(fn foreign.Handle) bool { return len(m.fn(fn).Blocks) == 0 }

func (m *module) Params(fn foreign.Handle) []string {
	f := m.fn(fn)
	if len(f.Params) == 0 {
		return nil
	}
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name()
	}
	return names
}

func (m *module) BlockName(bb foreign.Handle) string { return m.block(bb).Name() }

func (m *module) NumOperands(h foreign.Handle) int {
	switch obj := m.get(h).obj.(type) {
	case *ir.TermRet:
		if obj.X != nil {
			return 1
		}
		return 0
	case *ir.InstCall:
		return len(obj.Args) + 1
	case *ir.TermInvoke:
		return len(obj.Args) + 3
	case *ir.TermCondBr:
		return 3
	case *ir.TermBr:
		return 1
	}
	return 0
}

func (m *module) callee(h foreign.Handle) (callee value.Value, args int) {
	switch obj := m.get(h).obj.(type) {
	case *ir.InstCall:
		return obj.Callee, len(obj.Args)
	case *ir.TermInvoke:
		return obj.Invokee, len(obj.Args)
	case *ir.TermCallBr:
		return obj.Callee, len(obj.Args)
	}
	panic(fmt.Sprintf("llirmod: handle %d is not a call", h))
}

func (m *module) CalledValue(call foreign.Handle) foreign.Handle {
	v, _ := m.callee(call)
	return m.value(v)
}

func (m *module) NumArgOperands(call foreign.Handle) int {
	_, n := m.callee(call)
	return n
}

func (m *module) IsTailCall(call foreign.Handle) bool {
	var none enum.Tail
	if c, ok := m.get(call).obj.(*ir.InstCall); ok {
		return c.Tail != none
	}
	return false
}

func (m *module) IsConditional(br foreign.Handle) bool {
	_, ok := m.get(br).obj.(*ir.TermCondBr)
	return ok
}

func (m *module) Successors(term foreign.Handle) []foreign.Handle {
	var hs []foreign.Handle
	add := func(v value.Value) { hs = append(hs, m.value(v)) }

	switch t := m.get(term).obj.(type) {
	case *ir.TermBr:
		add(t.Target)
	case *ir.TermCondBr:
		add(t.TargetTrue)
		add(t.TargetFalse)
	case *ir.TermSwitch:
		add(t.TargetDefault)
		for _, c := range t.Cases {
			add(c.Target)
		}
	case *ir.TermInvoke:
		add(t.NormalRetTarget)
		add(t.ExceptionRetTarget)
	case interface{ Succs() []*ir.Block }:
		for _, b := range t.Succs() {
			add(b)
		}
	}
	return hs
}

func (m *module) asm(h foreign.Handle) *ir.InlineAsm {
	a, ok := m.get(h).obj.(*ir.InlineAsm)
	if !ok {
		panic(fmt.Sprintf("llirmod: handle %d is not inline asm", h))
	}
	return a
}

func (m *module) IsInlineAsm(h foreign.Handle) bool {
	if !h.Valid() {
		return false
	}
	return m.get(h).kind == foreign.KindInlineAsm
}

func (m *module) InlineAsmString(h foreign.Handle) string      { return m.asm(h).Asm }
func (m *module) InlineAsmConstraints(h foreign.Handle) string { return m.asm(h).Constraint }
func (m *module) InlineAsmHasSideEffects(h foreign.Handle) bool {
	return m.asm(h).SideEffect
}
func (m *module) InlineAsmNeedsAlignedStack(h foreign.Handle) bool {
	return m.asm(h).AlignStack
}

func (m *module) InlineAsmCanUnwind(h foreign.Handle) bool {
	return m.unwind[m.asm(h)]
}

func (m *module) InlineAsmDialect(h foreign.Handle) foreign.Dialect {
	if m.asm(h).IntelDialect {
		return foreign.DialectIntel
	}
	return foreign.DialectATT
}

func (m *module) Close() error {
	m.closed = true
	m.nodes = nil
	m.ids = nil
	m.unwind = nil
	return nil
}

// Debug locations.

type attached interface {
	MDAttachments() []*metadata.Attachment
}

func (m *module) dbg(h foreign.Handle) metadata.MDNode {
	a, ok := m.get(h).obj.(attached)
	if !ok {
		return nil
	}
	for _, md := range a.MDAttachments() {
		if strings.TrimPrefix(md.Name, "!") == "dbg" {
			return md.Node
		}
	}
	return nil
}

// debugFile resolves the DIFile and line of h's debug record.
func (m *module) debugFile(h foreign.Handle) (*metadata.DIFile, int64, int64) {
	switch n := m.dbg(h).(type) {
	case *metadata.DILocation:
		return scopeFile(n.Scope), n.Line, n.Column
	case *metadata.DISubprogram:
		return n.File, n.Line, 0
	case *metadata.DIGlobalVariableExpression:
		if n.Var != nil {
			return n.Var.File, n.Var.Line, 0
		}
	case *metadata.DIGlobalVariable:
		return n.File, n.Line, 0
	}
	return nil, 0, 0
}

func scopeFile(scope metadata.Field) *metadata.DIFile {
	switch s := scope.(type) {
	case *metadata.DIFile:
		return s
	case *metadata.DISubprogram:
		return s.File
	case *metadata.DILexicalBlock:
		return s.File
	case *metadata.DILexicalBlockFile:
		return s.File
	}
	return nil
}

func (m *module) DebugLocFilename(h foreign.Handle) (string, bool) {
	f, _, _ := m.debugFile(h)
	if f == nil || f.Filename == "" {
		return "", false
	}
	return f.Filename, true
}

func (m *module) DebugLocDirectory(h foreign.Handle) (string, bool) {
	f, _, _ := m.debugFile(h)
	if f == nil || f.Directory == "" {
		return "", false
	}
	return f.Directory, true
}

func (m *module) DebugLocLine(h foreign.Handle) uint32 {
	_, line, _ := m.debugFile(h)
	return toUint32(line)
}

func (m *module) DebugLocColumn(h foreign.Handle) uint32 {
	if k := m.get(h).kind; !k.HasColumn() {
		panic(fmt.Sprintf("llirmod: column queried on %s handle", k))
	}
	_, _, col := m.debugFile(h)
	return toUint32(col)
}

// toUint32 maps out-of-range metadata values to 0, the "absent" value.
func toUint32(v int64) uint32 {
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0
	}
	return u
}
