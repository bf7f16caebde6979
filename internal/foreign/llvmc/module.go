//go:build llvmc && cgo

package llvmc

/*
#include <stdlib.h>

#include "llvm-c/Core.h"
#include "llvm-c/IRReader.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"irgraph/internal/foreign"
)

// Name is the registry name of this backend.
const Name = "llvmc"

func init() {
	foreign.Register(Name, Loader{})
}

// Loader parses IR or bitcode through the LLVM C API. Each module gets its
// own context, disposed on Close.
type Loader struct{}

func (Loader) LoadFile(path string) (foreign.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Loader{}.LoadBytes(path, data)
}

func (Loader) LoadBytes(name string, data []byte) (foreign.Module, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var ptr *C.char
	if len(data) > 0 {
		ptr = (*C.char)(unsafe.Pointer(&data[0]))
	}
	buf := C.LLVMCreateMemoryBufferWithMemoryRangeCopy(ptr, C.size_t(len(data)), cname)

	ctx := C.LLVMContextCreate()
	var mod C.LLVMModuleRef
	var msg *C.char
	// LLVMParseIRInContext takes ownership of buf
	if C.LLVMParseIRInContext(ctx, buf, &mod, &msg) != 0 {
		defer C.LLVMDisposeMessage(msg)
		C.LLVMContextDispose(ctx)
		return nil, errors.New(C.GoString(msg))
	}
	return &module{
		name: name,
		ctx:  ctx,
		mod:  mod,
		ids:  make(map[C.LLVMValueRef]foreign.Handle),
	}, nil
}

type node struct {
	kind foreign.Kind
	v    C.LLVMValueRef
}

type module struct {
	name  string
	ctx   C.LLVMContextRef
	mod   C.LLVMModuleRef
	nodes []node
	ids   map[C.LLVMValueRef]foreign.Handle
}

var _ foreign.Module = (*module)(nil)

func (m *module) intern(kind foreign.Kind, v C.LLVMValueRef) foreign.Handle {
	if v == nil {
		return foreign.NoHandle
	}
	if h, ok := m.ids[v]; ok {
		return h
	}
	m.nodes = append(m.nodes, node{kind: kind, v: v})
	h := foreign.Handle(len(m.nodes))
	m.ids[v] = h
	return h
}

func (m *module) classify(v C.LLVMValueRef) foreign.Handle {
	if v == nil {
		return foreign.NoHandle
	}
	switch C.LLVMGetValueKind(v) {
	case C.LLVMFunctionValueKind:
		return m.intern(foreign.KindFunction, v)
	case C.LLVMGlobalVariableValueKind, C.LLVMGlobalAliasValueKind, C.LLVMGlobalIFuncValueKind:
		return m.intern(foreign.KindGlobal, v)
	case C.LLVMBasicBlockValueKind:
		return m.intern(foreign.KindBlock, v)
	case C.LLVMInlineAsmValueKind:
		return m.intern(foreign.KindInlineAsm, v)
	case C.LLVMInstructionValueKind:
		if C.LLVMIsATerminatorInst(v) != nil {
			return m.intern(foreign.KindTerminator, v)
		}
		return m.intern(foreign.KindInstruction, v)
	}
	return m.intern(foreign.KindValue, v)
}

func (m *module) get(h foreign.Handle) node {
	if m.mod == nil {
		panic("llvmc: use of closed module " + m.name)
	}
	if !h.Valid() || int(h) > len(m.nodes) {
		panic(fmt.Sprintf("llvmc: invalid handle %d", h))
	}
	return m.nodes[h-1]
}

func (m *module) val(h foreign.Handle) C.LLVMValueRef { return m.get(h).v }

func (m *module) blockRef(h foreign.Handle) C.LLVMBasicBlockRef {
	n := m.get(h)
	if n.kind != foreign.KindBlock {
		panic(fmt.Sprintf("llvmc: handle %d is not a block", h))
	}
	return C.LLVMValueAsBasicBlock(n.v)
}

func goString(p *C.char, n C.size_t) string {
	if p == nil {
		return ""
	}
	return C.GoStringN(p, C.int(n))
}

func (m *module) Name() string { return m.name }

func (m *module) SourceFileName() string {
	var n C.size_t
	return goString(C.LLVMGetSourceFileName(m.mod, &n), n)
}

func (m *module) DataLayout() string   { return C.GoString(C.LLVMGetDataLayoutStr(m.mod)) }
func (m *module) TargetTriple() string { return C.GoString(C.LLVMGetTarget(m.mod)) }

func (m *module) Globals() []foreign.Handle {
	var hs []foreign.Handle
	for g := C.LLVMGetFirstGlobal(m.mod); g != nil; g = C.LLVMGetNextGlobal(g) {
		hs = append(hs, m.intern(foreign.KindGlobal, g))
	}
	return hs
}

func (m *module) Functions() []foreign.Handle {
	var hs []foreign.Handle
	for f := C.LLVMGetFirstFunction(m.mod); f != nil; f = C.LLVMGetNextFunction(f) {
		hs = append(hs, m.intern(foreign.KindFunction, f))
	}
	return hs
}

func (m *module) Blocks(fn foreign.Handle) []foreign.Handle {
	var hs []foreign.Handle
	for bb := C.LLVMGetFirstBasicBlock(m.val(fn)); bb != nil; bb = C.LLVMGetNextBasicBlock(bb) {
		hs = append(hs, m.intern(foreign.KindBlock, C.LLVMBasicBlockAsValue(bb)))
	}
	return hs
}

func (m *module) Instructions(bb foreign.Handle) []foreign.Handle {
	var hs []foreign.Handle
	for i := C.LLVMGetFirstInstruction(m.blockRef(bb)); i != nil; i = C.LLVMGetNextInstruction(i) {
		if C.LLVMIsATerminatorInst(i) != nil {
			break
		}
		hs = append(hs, m.intern(foreign.KindInstruction, i))
	}
	return hs
}

func (m *module) Terminator(bb foreign.Handle) foreign.Handle {
	return m.intern(foreign.KindTerminator, C.LLVMGetBasicBlockTerminator(m.blockRef(bb)))
}

func (m *module) Kind(h foreign.Handle) foreign.Kind { return m.get(h).kind }

var opcodes = map[C.LLVMOpcode]foreign.Opcode{
	C.LLVMRet: foreign.OpRet, C.LLVMBr: foreign.OpBr, C.LLVMSwitch: foreign.OpSwitch,
	C.LLVMIndirectBr: foreign.OpIndirectBr, C.LLVMInvoke: foreign.OpInvoke,
	C.LLVMCallBr: foreign.OpCallBr, C.LLVMResume: foreign.OpResume,
	C.LLVMUnreachable: foreign.OpUnreachable, C.LLVMCall: foreign.OpCall,
	C.LLVMAdd: "add", C.LLVMFAdd: "fadd", C.LLVMSub: "sub", C.LLVMFSub: "fsub",
	C.LLVMMul: "mul", C.LLVMFMul: "fmul", C.LLVMUDiv: "udiv", C.LLVMSDiv: "sdiv",
	C.LLVMFDiv: "fdiv", C.LLVMURem: "urem", C.LLVMSRem: "srem", C.LLVMFRem: "frem",
	C.LLVMShl: "shl", C.LLVMLShr: "lshr", C.LLVMAShr: "ashr", C.LLVMAnd: "and",
	C.LLVMOr: "or", C.LLVMXor: "xor", C.LLVMAlloca: "alloca", C.LLVMLoad: "load",
	C.LLVMStore: "store", C.LLVMGetElementPtr: "getelementptr", C.LLVMTrunc: "trunc",
	C.LLVMZExt: "zext", C.LLVMSExt: "sext", C.LLVMBitCast: "bitcast",
	C.LLVMPtrToInt: "ptrtoint", C.LLVMIntToPtr: "inttoptr", C.LLVMICmp: "icmp",
	C.LLVMFCmp: "fcmp", C.LLVMPHI: "phi", C.LLVMSelect: "select",
	C.LLVMExtractValue: "extractvalue", C.LLVMInsertValue: "insertvalue",
	C.LLVMLandingPad: "landingpad", C.LLVMFreeze: "freeze", C.LLVMFNeg: "fneg",
}

func (m *module) Opcode(h foreign.Handle) foreign.Opcode {
	if op, ok := opcodes[C.LLVMGetInstructionOpcode(m.val(h))]; ok {
		return op
	}
	return foreign.OpUnknown
}

func (m *module) ValueName(h foreign.Handle) string {
	var n C.size_t
	return goString(C.LLVMGetValueName2(m.val(h), &n), n)
}

func (m *module) IsGlobalValue(h foreign.Handle) bool {
	return C.LLVMIsAGlobalValue(m.val(h)) != nil
}

func (m *module) IsDeclaration(fn foreign.Handle) bool { return C.LLVMIsDeclaration(m.val(fn)) != 0 }

func (m *module) Params(fn foreign.Handle) []string {
	f := m.val(fn)
	count := int(C.LLVMCountParams(f))
	if count == 0 {
		return nil
	}
	names := make([]string, count)
	for i := range count {
		var n C.size_t
		names[i] = goString(C.LLVMGetValueName2(C.LLVMGetParam(f, C.uint(i)), &n), n)
	}
	return names
}

func (m *module) BlockName(bb foreign.Handle) string {
	return C.GoString(C.LLVMGetBasicBlockName(m.blockRef(bb)))
}

func (m *module) NumOperands(h foreign.Handle) int { return int(C.LLVMGetNumOperands(m.val(h))) }

func (m *module) DebugLocFilename(h foreign.Handle) (string, bool) {
	var n C.uint
	s := C.LLVMGetDebugLocFilename(m.val(h), &n)
	if s == nil || n == 0 {
		return "", false
	}
	return C.GoStringN(s, C.int(n)), true
}

func (m *module) DebugLocDirectory(h foreign.Handle) (string, bool) {
	var n C.uint
	s := C.LLVMGetDebugLocDirectory(m.val(h), &n)
	if s == nil || n == 0 {
		return "", false
	}
	return C.GoStringN(s, C.int(n)), true
}

func (m *module) DebugLocLine(h foreign.Handle) uint32 { return uint32(C.LLVMGetDebugLocLine(m.val(h))) }

func (m *module) DebugLocColumn(h foreign.Handle) uint32 {
	if k := m.get(h).kind; !k.HasColumn() {
		// LLVM asserts here; fail in Go instead
		panic(fmt.Sprintf("llvmc: column queried on %s handle", k))
	}
	return uint32(C.LLVMGetDebugLocColumn(m.val(h)))
}

func (m *module) CalledValue(call foreign.Handle) foreign.Handle {
	return m.classify(C.LLVMGetCalledValue(m.val(call)))
}

func (m *module) IsTailCall(call foreign.Handle) bool {
	v := m.val(call)
	return C.LLVMIsACallInst(v) != nil && C.LLVMIsTailCall(v) != 0
}

func (m *module) NumArgOperands(call foreign.Handle) int {
	return int(C.LLVMGetNumArgOperands(m.val(call)))
}

func (m *module) IsInlineAsm(h foreign.Handle) bool {
	return h.Valid() && m.get(h).kind == foreign.KindInlineAsm
}

func (m *module) InlineAsmString(h foreign.Handle) string {
	var n C.size_t
	return goString(C.LLVMGetInlineAsmAsmString(m.val(h), &n), n)
}

func (m *module) InlineAsmConstraints(h foreign.Handle) string {
	var n C.size_t
	return goString(C.LLVMGetInlineAsmConstraintString(m.val(h), &n), n)
}

func (m *module) InlineAsmHasSideEffects(h foreign.Handle) bool {
	return C.LLVMGetInlineAsmHasSideEffects(m.val(h)) != 0
}

func (m *module) InlineAsmCanUnwind(h foreign.Handle) bool {
	return C.LLVMGetInlineAsmCanUnwind(m.val(h)) != 0
}

func (m *module) InlineAsmNeedsAlignedStack(h foreign.Handle) bool {
	return C.LLVMGetInlineAsmNeedsAlignedStack(m.val(h)) != 0
}

func (m *module) InlineAsmDialect(h foreign.Handle) foreign.Dialect {
	if C.LLVMGetInlineAsmDialect(m.val(h)) == C.LLVMInlineAsmDialectIntel {
		return foreign.DialectIntel
	}
	return foreign.DialectATT
}

func (m *module) Successors(term foreign.Handle) []foreign.Handle {
	v := m.val(term)
	n := int(C.LLVMGetNumSuccessors(v))
	hs := make([]foreign.Handle, n)
	for i := range n {
		bb := C.LLVMGetSuccessor(v, C.uint(i))
		hs[i] = m.intern(foreign.KindBlock, C.LLVMBasicBlockAsValue(bb))
	}
	return hs
}

func (m *module) IsConditional(br foreign.Handle) bool {
	v := m.val(br)
	return C.LLVMGetInstructionOpcode(v) == C.LLVMBr && C.LLVMIsConditional(v) != 0
}

func (m *module) Close() error {
	if m.mod == nil {
		return nil
	}
	C.LLVMDisposeModule(m.mod)
	C.LLVMContextDispose(m.ctx)
	m.mod, m.ctx = nil, nil
	m.nodes, m.ids = nil, nil
	return nil
}
