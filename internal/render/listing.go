package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"irgraph/internal/llgraph"
)

// Locations writes the module's sorted, deduplicated locations, one per line.
func Locations(w io.Writer, m *llgraph.Module) error {
	var b strings.Builder
	for _, l := range m.Locations() {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// CallKind names the callee case of a call site: "function" for a call to a
// function defined or declared in the module, "indirect" for any other value
// and "asm" for inline assembly.
func CallKind(m *llgraph.Module, c llgraph.Callee) string {
	return llgraph.MatchCallee(c,
		func(r llgraph.ValueRef) string {
			if _, ok := m.ResolveCallee(r); ok {
				return "function"
			}
			return "indirect"
		},
		func(*llgraph.InlineAssembly) string { return "asm" },
	)
}

// Calls writes one line per call site in module order.
func Calls(w io.Writer, m *llgraph.Module) error {
	sites := m.Calls()
	rows := make([][]string, 0, len(sites))
	for _, s := range sites {
		loc := "-"
		if l, ok := s.Call.Location.Get(); ok {
			loc = l.String()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s/%s#%d", s.Function, s.Block, s.Index),
			CallKind(m, s.Call.Callee),
			CalleeText(s.Call.Callee),
			loc,
		})
	}
	return Table(w, []string{"SITE", "KIND", "CALLEE", "LOCATION"}, rows)
}

// Functions writes a table of the module's functions.
func Functions(w io.Writer, m *llgraph.Module) error {
	rows := make([][]string, 0, len(m.Functions))
	for _, f := range m.Functions {
		kind := "define"
		if f.IsDeclaration {
			kind = "declare"
		}
		loc := "-"
		if l, ok := f.Location.Get(); ok {
			loc = l.String()
		}
		rows = append(rows, []string{
			f.Name,
			kind,
			fmt.Sprint(len(f.Blocks)),
			fmt.Sprint(f.NumInstrs()),
			loc,
		})
	}
	return Table(w, []string{"NAME", "KIND", "BLOCKS", "INSTRS", "LOCATION"}, rows)
}

// Table writes left-aligned columns padded by display width, two spaces
// apart. The last column is not padded. A nil header is omitted.
func Table(w io.Writer, header []string, rows [][]string) error {
	cols := len(header)
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}

	var b strings.Builder
	write := func(row []string) {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	if header != nil {
		write(header)
	}
	for _, r := range rows {
		write(r)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
