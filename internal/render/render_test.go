package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"gopkg.in/yaml.v3"

	"irgraph/internal/debugloc"
	"irgraph/internal/llgraph"
	"irgraph/internal/opt"
)

func at(line uint32, col ...uint32) opt.Value[debugloc.Loc] {
	l := debugloc.Loc{Line: line, Filename: "demo.c", Directory: opt.Some("/src")}
	if len(col) > 0 {
		l.Col = opt.Some(col[0])
	}
	return opt.Some(l)
}

func demoModule() *llgraph.Module {
	main := &llgraph.Function{
		Name:     "main",
		Params:   []string{"argc"},
		Location: at(3),
		Blocks: []*llgraph.Block{
			{
				Name: "entry",
				Instrs: []llgraph.Instruction{
					&llgraph.Other{Op: "load", Name: "x", Location: at(4, 11)},
					&llgraph.Call{Callee: &llgraph.InlineAssembly{Assembly: "nop", HasSideEffects: true}},
					&llgraph.Call{Name: "r", Callee: llgraph.ValueRef{Name: "helper", Global: true}, NumArgs: 1, Tail: true, Location: at(5, 10)},
				},
				Term: &llgraph.CondBr{TrueTarget: "then", FalseTarget: "done", Location: at(5, 3)},
			},
			{
				Name:   "then",
				Instrs: []llgraph.Instruction{&llgraph.Call{Callee: llgraph.ValueRef{Name: "fp"}}},
				Term:   &llgraph.Br{Target: "done"},
			},
			{
				Name: "done",
				Term: &llgraph.Ret{HasValue: true, Location: at(7, 3)},
			},
		},
	}
	helper := &llgraph.Function{Name: "helper", Params: []string{"n"}, IsDeclaration: true}
	return llgraph.NewModule(
		llgraph.ModuleInfo{Name: "demo.ll", SourceFileName: "demo.c", TargetTriple: "x86_64-unknown-linux-gnu"},
		[]*llgraph.Global{{Name: "counter", Location: at(1)}},
		[]*llgraph.Function{main, helper},
	)
}

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGolden(t *testing.T) {
	m := demoModule()
	cases := []struct {
		name   string
		render func(*bytes.Buffer) error
	}{
		{"demo_text", func(b *bytes.Buffer) error { return Dump(b, m, FormatText) }},
		{"demo_json", func(b *bytes.Buffer) error { return Dump(b, m, FormatJSON) }},
		{"demo_locs", func(b *bytes.Buffer) error { return Locations(b, m) }},
		{"demo_calls", func(b *bytes.Buffer) error { return Calls(b, m) }},
		{"demo_funcs", func(b *bytes.Buffer) error { return Functions(b, m) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := c.render(&buf); err != nil {
				t.Fatal(err)
			}
			golden(t).Assert(t, c.name, buf.Bytes())
		})
	}
}

func TestDump_YAMLDecodes(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, demoModule(), FormatYAML); err != nil {
		t.Fatal(err)
	}
	var doc ModuleDoc
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml: %v\n%s", err, buf.String())
	}
	if len(doc.Functions) != 2 || doc.Functions[0].Blocks[0].Instrs[1].Callee.Kind != "asm" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if got := *doc.Functions[0].Blocks[0].Instrs[0].Loc.Col; got != 11 {
		t.Errorf("col = %d, want 11", got)
	}
}

func TestCalleeText_AsmFlags(t *testing.T) {
	got := CalleeText(&llgraph.InlineAssembly{
		Assembly:          "mov eax, 1",
		Constraints:       "~{eax}",
		HasSideEffects:    true,
		NeedsAlignedStack: true,
		CanUnwind:         true,
		Dialect:           llgraph.DialectIntel,
	})
	want := `asm sideeffect alignstack inteldialect unwind "mov eax, 1", "~{eax}"`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(demoModule())
	want := Stats{
		Module:       "demo.ll",
		Globals:      1,
		Functions:    2,
		Declarations: 1,
		Blocks:       3,
		Instrs:       4,
		Calls:        3,
		AsmCalls:     1,
		Locations:    6,
		MissingLocs:  3,
	}
	if s != want {
		t.Errorf("Summarize = %+v\nwant %+v", s, want)
	}
	if rows := s.Rows(); rows[0] != [2]string{"globals", "1"} {
		t.Errorf("first row = %v", rows[0])
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil || !strings.Contains(err.Error(), "xml") {
		t.Errorf("expected error naming the bad format, got %v", err)
	}
}
