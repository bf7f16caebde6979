package llgraph

import "irgraph/internal/foreign"

// CalleeKind tags the two Callee cases.
type CalleeKind uint8

const (
	CalleeValue CalleeKind = iota + 1
	CalleeInlineAsm
)

func (k CalleeKind) String() string {
	switch k {
	case CalleeValue:
		return "value"
	case CalleeInlineAsm:
		return "inline-asm"
	}
	return "unknown"
}

// Callee is the target of a call: a ValueRef or an *InlineAssembly. The set
// is closed; use MatchCallee to handle both cases.
type Callee interface {
	CalleeKind() CalleeKind
	sealedCallee()
}

// ValueRef is an ordinary callee: the name of the called value. Global refers
// to a module-level value (@name); otherwise the call is indirect through a
// local register (%name). The zero ValueRef marks a call whose callee operand
// was missing.
type ValueRef struct {
	Name   string
	Global bool
}

// UnresolvedRef is how an unresolved callee renders.
const UnresolvedRef = "<unresolved>"

func (ValueRef) CalleeKind() CalleeKind { return CalleeValue }
func (ValueRef) sealedCallee()          {}

// Resolved reports whether the reference names a value.
func (r ValueRef) Resolved() bool { return r.Name != "" }

// String renders the reference with its LLVM sigil.
func (r ValueRef) String() string {
	if !r.Resolved() {
		return UnresolvedRef
	}
	if r.Global {
		return "@" + r.Name
	}
	return "%" + r.Name
}

// Dialect is the syntax of an inline assembly string.
type Dialect = foreign.Dialect

const (
	DialectATT   = foreign.DialectATT
	DialectIntel = foreign.DialectIntel
)

// InlineAssembly is the payload of a call to an inline asm block.
type InlineAssembly struct {
	Assembly          string
	Constraints       string
	HasSideEffects    bool
	CanUnwind         bool
	NeedsAlignedStack bool
	Dialect           Dialect
}

func (*InlineAssembly) CalleeKind() CalleeKind { return CalleeInlineAsm }
func (*InlineAssembly) sealedCallee()          {}

// MatchCallee dispatches on c. Both handlers are required, so every caller
// covers both cases.
func MatchCallee[T any](c Callee, onValue func(ValueRef) T, onAsm func(*InlineAssembly) T) T {
	switch c := c.(type) {
	case ValueRef:
		return onValue(c)
	case *InlineAssembly:
		return onAsm(c)
	}
	panic("llgraph: unknown callee case")
}
