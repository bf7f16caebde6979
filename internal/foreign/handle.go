package foreign

// Handle is an opaque reference into a loaded foreign module.
type Handle uint32

// NoHandle is the null handle.
const NoHandle Handle = 0

// Valid reports whether h is non-null.
func (h Handle) Valid() bool { return h != NoHandle }

// Kind classifies what a handle refers to.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFunction
	KindGlobal
	KindBlock
	KindInstruction
	KindTerminator
	KindInlineAsm
	KindValue // any other operand: argument, constant, local register
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindGlobal:
		return "global"
	case KindBlock:
		return "block"
	case KindInstruction:
		return "instruction"
	case KindTerminator:
		return "terminator"
	case KindInlineAsm:
		return "inline-asm"
	case KindValue:
		return "value"
	default:
		return "invalid"
	}
}

// HasDebugLoc reports whether the no-column location query is defined for k.
func (k Kind) HasDebugLoc() bool {
	switch k {
	case KindFunction, KindGlobal, KindInstruction, KindTerminator:
		return true
	}
	return false
}

// HasColumn reports whether the column query is defined for k.
func (k Kind) HasColumn() bool {
	return k == KindInstruction || k == KindTerminator
}

// Opcode is the textual LLVM opcode of an instruction or terminator
// ("call", "br", "alloca", ...). Backends pass through opcodes they do not
// model specially.
type Opcode string

const (
	OpCall        Opcode = "call"
	OpInvoke      Opcode = "invoke"
	OpCallBr      Opcode = "callbr"
	OpRet         Opcode = "ret"
	OpBr          Opcode = "br"
	OpSwitch      Opcode = "switch"
	OpIndirectBr  Opcode = "indirectbr"
	OpResume      Opcode = "resume"
	OpUnreachable Opcode = "unreachable"
	OpUnknown     Opcode = "unknown"
)

// Dialect is the assembly syntax of an inline-asm block.
type Dialect uint8

const (
	DialectATT Dialect = iota
	DialectIntel
)

func (d Dialect) String() string {
	if d == DialectIntel {
		return "intel"
	}
	return "att"
}
