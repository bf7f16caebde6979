package llgraph

import (
	"irgraph/internal/debugloc"
	"irgraph/internal/opt"
)

// Instruction is a non-terminator instruction: *Call or *Other.
type Instruction interface {
	Opcode() string
	Result() string
	Loc() opt.Value[debugloc.Loc]
	sealedInstruction()
}

// Call is a call instruction.
type Call struct {
	// Name is the SSA result name; empty for void or unnamed calls.
	Name     string
	Callee   Callee
	NumArgs  int
	Tail     bool
	Location opt.Value[debugloc.Loc]
}

func (*Call) Opcode() string                 { return "call" }
func (c *Call) Result() string               { return c.Name }
func (c *Call) Loc() opt.Value[debugloc.Loc] { return c.Location }
func (*Call) sealedInstruction()             {}

// IsInlineAsm reports whether the callee is inline assembly.
func (c *Call) IsInlineAsm() bool {
	return c.Callee != nil && c.Callee.CalleeKind() == CalleeInlineAsm
}

// InlineAsm returns the inline asm payload, if that is the callee case.
func (c *Call) InlineAsm() (*InlineAssembly, bool) {
	a, ok := c.Callee.(*InlineAssembly)
	return a, ok
}

// Target returns the ordinary callee reference, if that is the callee case.
func (c *Call) Target() (ValueRef, bool) {
	r, ok := c.Callee.(ValueRef)
	return r, ok
}

// Other is any instruction without a dedicated variant.
type Other struct {
	Op       string
	Name     string
	Location opt.Value[debugloc.Loc]
}

func (o *Other) Opcode() string               { return o.Op }
func (o *Other) Result() string               { return o.Name }
func (o *Other) Loc() opt.Value[debugloc.Loc] { return o.Location }
func (*Other) sealedInstruction()             {}
