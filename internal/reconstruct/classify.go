package reconstruct

import (
	"go.uber.org/zap"

	"irgraph/internal/debugloc"
	"irgraph/internal/foreign"
	"irgraph/internal/llgraph"
	"irgraph/internal/opt"
)

// classifyCallee turns a call's callee operand into one of the two callee
// cases. Inline asm payloads are copied verbatim.
func (b *builder) classifyCallee(call foreign.Handle) llgraph.Callee {
	callee := b.m.CalledValue(call)
	if b.m.IsInlineAsm(callee) {
		return &llgraph.InlineAssembly{
			Assembly:          b.m.InlineAsmString(callee),
			Constraints:       b.m.InlineAsmConstraints(callee),
			HasSideEffects:    b.m.InlineAsmHasSideEffects(callee),
			CanUnwind:         b.m.InlineAsmCanUnwind(callee),
			NeedsAlignedStack: b.m.InlineAsmNeedsAlignedStack(callee),
			Dialect:           b.m.InlineAsmDialect(callee),
		}
	}
	if !callee.Valid() {
		Logger().Warn("call without callee operand", zap.String("module", b.name), zap.String("function", b.fn))
		return llgraph.ValueRef{}
	}
	if name, ok := b.funcs[callee]; ok {
		return llgraph.ValueRef{Name: name, Global: true}
	}
	return llgraph.ValueRef{
		Name:   b.m.ValueName(callee),
		Global: b.m.IsGlobalValue(callee),
	}
}

// nodeLoc picks the location variant for an instruction-position handle. A
// handle that is not an instruction or terminator gets no location instead of
// tripping the column precondition.
func (b *builder) nodeLoc(h foreign.Handle) opt.Value[debugloc.Loc] {
	if !b.m.Kind(h).HasColumn() {
		Logger().Warn("unexpected handle kind in instruction position",
			zap.String("module", b.name),
			zap.String("function", b.fn),
			zap.Stringer("kind", b.m.Kind(h)))
		return opt.None[debugloc.Loc]()
	}
	return debugloc.FromHandleWithCol(b.m, h)
}

// classifyInstruction builds the typed variant of a non-terminator.
func (b *builder) classifyInstruction(h foreign.Handle) llgraph.Instruction {
	op := b.m.Opcode(h)
	switch op {
	case foreign.OpCall:
		return &llgraph.Call{
			Name:     b.m.ValueName(h),
			Callee:   b.classifyCallee(h),
			NumArgs:  b.m.NumArgOperands(h),
			Tail:     b.m.IsTailCall(h),
			Location: b.nodeLoc(h),
		}
	default:
		return &llgraph.Other{
			Op:       string(op),
			Name:     b.m.ValueName(h),
			Location: b.nodeLoc(h),
		}
	}
}

// classifyTerminator builds the typed variant of a terminator.
func (b *builder) classifyTerminator(h foreign.Handle) llgraph.Terminator {
	op := b.m.Opcode(h)
	loc := b.nodeLoc(h)
	succs := b.successorNames(h)

	switch op {
	case foreign.OpRet:
		return &llgraph.Ret{HasValue: b.m.NumOperands(h) > 0, Location: loc}
	case foreign.OpBr:
		if b.m.IsConditional(h) {
			return &llgraph.CondBr{TrueTarget: at(succs, 0), FalseTarget: at(succs, 1), Location: loc}
		}
		return &llgraph.Br{Target: at(succs, 0), Location: loc}
	case foreign.OpSwitch:
		var cases []string
		if len(succs) > 1 {
			cases = succs[1:]
		}
		return &llgraph.Switch{Default: at(succs, 0), Cases: cases, Location: loc}
	case foreign.OpUnreachable:
		return &llgraph.Unreachable{Location: loc}
	case foreign.OpInvoke:
		return &llgraph.Invoke{
			Name:     b.m.ValueName(h),
			Callee:   b.classifyCallee(h),
			NumArgs:  b.m.NumArgOperands(h),
			Normal:   at(succs, 0),
			Unwind:   at(succs, 1),
			Location: loc,
		}
	default:
		return &llgraph.OtherTerm{Op: string(op), Targets: succs, Location: loc}
	}
}

func (b *builder) successorNames(term foreign.Handle) []string {
	succs := b.m.Successors(term)
	if len(succs) == 0 {
		return nil
	}
	names := make([]string, len(succs))
	for i, s := range succs {
		names[i] = b.m.BlockName(s)
	}
	return names
}

func at(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return ""
}
