package llgraph

import (
	"irgraph/internal/debugloc"
	"irgraph/internal/opt"
)

// Terminator ends a basic block. Successor blocks are named, not owned.
type Terminator interface {
	Opcode() string
	Successors() []string
	Loc() opt.Value[debugloc.Loc]
	sealedTerminator()
}

// Ret returns from the function.
type Ret struct {
	HasValue bool
	Location opt.Value[debugloc.Loc]
}

func (*Ret) Opcode() string                 { return "ret" }
func (*Ret) Successors() []string           { return nil }
func (t *Ret) Loc() opt.Value[debugloc.Loc] { return t.Location }
func (*Ret) sealedTerminator()              {}

// Br is an unconditional branch.
type Br struct {
	Target   string
	Location opt.Value[debugloc.Loc]
}

func (*Br) Opcode() string                 { return "br" }
func (t *Br) Successors() []string         { return []string{t.Target} }
func (t *Br) Loc() opt.Value[debugloc.Loc] { return t.Location }
func (*Br) sealedTerminator()              {}

// CondBr is a conditional branch.
type CondBr struct {
	TrueTarget  string
	FalseTarget string
	Location    opt.Value[debugloc.Loc]
}

func (*CondBr) Opcode() string                 { return "br" }
func (t *CondBr) Successors() []string         { return []string{t.TrueTarget, t.FalseTarget} }
func (t *CondBr) Loc() opt.Value[debugloc.Loc] { return t.Location }
func (*CondBr) sealedTerminator()              {}

// Switch branches to one of several targets.
type Switch struct {
	Default  string
	Cases    []string
	Location opt.Value[debugloc.Loc]
}

func (*Switch) Opcode() string { return "switch" }
func (t *Switch) Successors() []string {
	return append([]string{t.Default}, t.Cases...)
}
func (t *Switch) Loc() opt.Value[debugloc.Loc] { return t.Location }
func (*Switch) sealedTerminator()              {}

// Unreachable marks an unreachable block end.
type Unreachable struct {
	Location opt.Value[debugloc.Loc]
}

func (*Unreachable) Opcode() string                 { return "unreachable" }
func (*Unreachable) Successors() []string           { return nil }
func (t *Unreachable) Loc() opt.Value[debugloc.Loc] { return t.Location }
func (*Unreachable) sealedTerminator()              {}

// Invoke is a call with an exceptional successor.
type Invoke struct {
	Name     string
	Callee   Callee
	NumArgs  int
	Normal   string
	Unwind   string
	Location opt.Value[debugloc.Loc]
}

func (*Invoke) Opcode() string                 { return "invoke" }
func (t *Invoke) Successors() []string         { return []string{t.Normal, t.Unwind} }
func (t *Invoke) Loc() opt.Value[debugloc.Loc] { return t.Location }
func (*Invoke) sealedTerminator()              {}

// OtherTerm is any terminator without a dedicated variant.
type OtherTerm struct {
	Op       string
	Targets  []string
	Location opt.Value[debugloc.Loc]
}

func (t *OtherTerm) Opcode() string               { return t.Op }
func (t *OtherTerm) Successors() []string         { return append([]string(nil), t.Targets...) }
func (t *OtherTerm) Loc() opt.Value[debugloc.Loc] { return t.Location }
func (*OtherTerm) sealedTerminator()              {}
