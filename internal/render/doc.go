package render

import (
	"irgraph/internal/debugloc"
	"irgraph/internal/llgraph"
	"irgraph/internal/opt"
)

// ModuleDoc is the serialized shape of a module for JSON and YAML.
type ModuleDoc struct {
	Module       string        `json:"module" yaml:"module"`
	SourceFile   string        `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	TargetTriple string        `json:"target_triple,omitempty" yaml:"target_triple,omitempty"`
	DataLayout   string        `json:"data_layout,omitempty" yaml:"data_layout,omitempty"`
	Globals      []GlobalDoc   `json:"globals,omitempty" yaml:"globals,omitempty"`
	Functions    []FunctionDoc `json:"functions,omitempty" yaml:"functions,omitempty"`
}

type GlobalDoc struct {
	Name string  `json:"name" yaml:"name"`
	Loc  *LocDoc `json:"loc,omitempty" yaml:"loc,omitempty"`
}

type FunctionDoc struct {
	Name        string     `json:"name" yaml:"name"`
	Params      []string   `json:"params,omitempty" yaml:"params,omitempty"`
	Declaration bool       `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Loc         *LocDoc    `json:"loc,omitempty" yaml:"loc,omitempty"`
	Blocks      []BlockDoc `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

type BlockDoc struct {
	Name   string     `json:"name" yaml:"name"`
	Instrs []InstrDoc `json:"instrs,omitempty" yaml:"instrs,omitempty"`
	Term   *InstrDoc  `json:"term,omitempty" yaml:"term,omitempty"`
}

type InstrDoc struct {
	Op      string     `json:"op" yaml:"op"`
	Name    string     `json:"name,omitempty" yaml:"name,omitempty"`
	Callee  *CalleeDoc `json:"callee,omitempty" yaml:"callee,omitempty"`
	Args    int        `json:"args,omitempty" yaml:"args,omitempty"`
	Tail    bool       `json:"tail,omitempty" yaml:"tail,omitempty"`
	Targets []string   `json:"targets,omitempty" yaml:"targets,omitempty"`
	Loc     *LocDoc    `json:"loc,omitempty" yaml:"loc,omitempty"`
}

// CalleeDoc has Kind "value" or "asm"; only that case's fields are set.
type CalleeDoc struct {
	Kind        string `json:"kind" yaml:"kind"`
	Ref         string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Asm         string `json:"asm,omitempty" yaml:"asm,omitempty"`
	Constraints string `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	SideEffects bool   `json:"side_effects,omitempty" yaml:"side_effects,omitempty"`
	CanUnwind   bool   `json:"can_unwind,omitempty" yaml:"can_unwind,omitempty"`
	AlignStack  bool   `json:"align_stack,omitempty" yaml:"align_stack,omitempty"`
	Dialect     string `json:"dialect,omitempty" yaml:"dialect,omitempty"`
}

type LocDoc struct {
	Directory string  `json:"directory,omitempty" yaml:"directory,omitempty"`
	File      string  `json:"file" yaml:"file"`
	Line      uint32  `json:"line" yaml:"line"`
	Col       *uint32 `json:"col,omitempty" yaml:"col,omitempty"`
}

// NewModuleDoc converts m.
func NewModuleDoc(m *llgraph.Module) ModuleDoc {
	d := ModuleDoc{
		Module:       m.Name,
		SourceFile:   m.SourceFileName,
		TargetTriple: m.TargetTriple,
		DataLayout:   m.DataLayout,
	}
	for _, g := range m.Globals {
		d.Globals = append(d.Globals, GlobalDoc{Name: g.Name, Loc: locDoc(g.Location)})
	}
	for _, f := range m.Functions {
		fd := FunctionDoc{Name: f.Name, Params: f.Params, Declaration: f.IsDeclaration, Loc: locDoc(f.Location)}
		for _, b := range f.Blocks {
			bd := BlockDoc{Name: b.Name}
			for _, in := range b.Instrs {
				bd.Instrs = append(bd.Instrs, instrDoc(in))
			}
			if b.Term != nil {
				td := termDoc(b.Term)
				bd.Term = &td
			}
			fd.Blocks = append(fd.Blocks, bd)
		}
		d.Functions = append(d.Functions, fd)
	}
	return d
}

func locDoc(v opt.Value[debugloc.Loc]) *LocDoc {
	l, ok := v.Get()
	if !ok {
		return nil
	}
	return &LocDoc{Directory: l.Directory.OrZero(), File: l.Filename, Line: l.Line, Col: l.Col.Ptr()}
}

func calleeDoc(c llgraph.Callee) *CalleeDoc {
	return llgraph.MatchCallee(c,
		func(r llgraph.ValueRef) *CalleeDoc {
			return &CalleeDoc{Kind: "value", Ref: r.String()}
		},
		func(a *llgraph.InlineAssembly) *CalleeDoc {
			return &CalleeDoc{
				Kind:        "asm",
				Asm:         a.Assembly,
				Constraints: a.Constraints,
				SideEffects: a.HasSideEffects,
				CanUnwind:   a.CanUnwind,
				AlignStack:  a.NeedsAlignedStack,
				Dialect:     a.Dialect.String(),
			}
		})
}

func instrDoc(in llgraph.Instruction) InstrDoc {
	d := InstrDoc{Op: in.Opcode(), Name: in.Result(), Loc: locDoc(in.Loc())}
	if c, ok := in.(*llgraph.Call); ok {
		d.Callee = calleeDoc(c.Callee)
		d.Args = c.NumArgs
		d.Tail = c.Tail
	}
	return d
}

func termDoc(t llgraph.Terminator) InstrDoc {
	d := InstrDoc{Op: t.Opcode(), Targets: t.Successors(), Loc: locDoc(t.Loc())}
	if inv, ok := t.(*llgraph.Invoke); ok {
		d.Name = inv.Name
		d.Callee = calleeDoc(inv.Callee)
		d.Args = inv.NumArgs
	}
	return d
}
