package debugloc

import (
	"irgraph/internal/foreign"
	"irgraph/internal/irerr"
	"irgraph/internal/opt"
)

// FromHandleNoCol builds the location of h, which must be a function, global,
// instruction or terminator handle. The filename is queried first; when it is
// absent no other query is made and the result is None.
func FromHandleNoCol(m foreign.Module, h foreign.Handle) opt.Value[Loc] {
	filename, ok := m.DebugLocFilename(h)
	if !ok || filename == "" {
		return opt.None[Loc]()
	}
	dir, hasDir := m.DebugLocDirectory(h)
	return opt.Some(Loc{
		Line:      m.DebugLocLine(h),
		Filename:  filename,
		Directory: opt.FromPair(dir, hasDir && dir != ""),
	})
}

// FromHandleWithCol is FromHandleNoCol plus the column. h must be an
// instruction or terminator handle; any other kind is a precondition
// violation and panics with an *irerr.Error.
func FromHandleWithCol(m foreign.Module, h foreign.Handle) opt.Value[Loc] {
	if k := m.Kind(h); !k.HasColumn() {
		panic(irerr.Precondition("column location requested for %s handle %d", k, h))
	}
	loc, ok := FromHandleNoCol(m, h).Get()
	if !ok {
		return opt.None[Loc]()
	}
	loc.Col = opt.Some(m.DebugLocColumn(h))
	return opt.Some(loc)
}

// FromHandle picks the right variant for h's kind.
func FromHandle(m foreign.Module, h foreign.Handle) opt.Value[Loc] {
	if m.Kind(h).HasColumn() {
		return FromHandleWithCol(m, h)
	}
	return FromHandleNoCol(m, h)
}
