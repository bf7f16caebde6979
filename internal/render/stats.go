package render

import (
	"strconv"

	"irgraph/internal/llgraph"
)

// Stats summarizes a module.
type Stats struct {
	Module       string
	Globals      int
	Functions    int
	Declarations int
	Blocks       int
	Instrs       int
	Calls        int
	AsmCalls     int
	Locations    int
	MissingLocs  int // instructions and terminators without a location
}

// Summarize counts the nodes of m.
func Summarize(m *llgraph.Module) Stats {
	s := Stats{Module: m.Name, Globals: len(m.Globals), Functions: len(m.Functions)}
	for _, f := range m.Functions {
		if f.IsDeclaration {
			s.Declarations++
		}
		s.Blocks += len(f.Blocks)
		for _, b := range f.Blocks {
			s.Instrs += len(b.Instrs)
			for _, in := range b.Instrs {
				if in.Loc().IsNone() {
					s.MissingLocs++
				}
			}
			if b.Term != nil && b.Term.Loc().IsNone() {
				s.MissingLocs++
			}
		}
	}
	for _, site := range m.Calls() {
		s.Calls++
		if site.Call.IsInlineAsm() {
			s.AsmCalls++
		}
	}
	s.Locations = len(m.Locations())
	return s
}

// Rows returns label/value pairs in display order.
func (s Stats) Rows() [][2]string {
	itoa := strconv.Itoa
	return [][2]string{
		{"globals", itoa(s.Globals)},
		{"functions", itoa(s.Functions)},
		{"declarations", itoa(s.Declarations)},
		{"blocks", itoa(s.Blocks)},
		{"instructions", itoa(s.Instrs)},
		{"calls", itoa(s.Calls)},
		{"inline asm calls", itoa(s.AsmCalls)},
		{"locations", itoa(s.Locations)},
		{"unlocated nodes", itoa(s.MissingLocs)},
	}
}
