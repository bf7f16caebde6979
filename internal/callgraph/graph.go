// Package callgraph orders the functions of a module by their direct calls.
//
// Only calls whose callee resolves to a function of the same module form
// edges. Indirect calls and inline assembly are ignored.
package callgraph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"irgraph/internal/llgraph"
)

// FuncID indexes Graph.Names. IDs follow module order.
type FuncID uint32

type Graph struct {
	Names   []string   // FuncID -> function name
	Callees [][]FuncID // Callees[f] = distinct direct callees, sorted
	Callers [][]FuncID // Callers[f] = distinct direct callers, sorted
}

// Build collects the direct call edges of m.
func Build(m *llgraph.Module) Graph {
	n := len(m.Functions)
	g := Graph{
		Names:   make([]string, n),
		Callees: make([][]FuncID, n),
		Callers: make([][]FuncID, n),
	}
	ids := make(map[string]FuncID, n)
	for i, f := range m.Functions {
		id := toID(i)
		if _, dup := ids[f.Name]; !dup {
			ids[f.Name] = id
		}
		g.Names[id] = f.Name
	}

	for _, site := range m.Calls() {
		target, ok := m.ResolveCallee(site.Call.Callee)
		if !ok {
			continue
		}
		from, to := ids[site.Function], ids[target.Name]
		g.Callees[from] = append(g.Callees[from], to)
		g.Callers[to] = append(g.Callers[to], from)
	}
	for i := range n {
		g.Callees[i] = sortedUnique(g.Callees[i])
		g.Callers[i] = sortedUnique(g.Callers[i])
	}
	return g
}

// ID returns the FuncID of name.
func (g Graph) ID(name string) (FuncID, bool) {
	i := slices.Index(g.Names, name)
	if i < 0 {
		return 0, false
	}
	return toID(i), true
}

func sortedUnique(ids []FuncID) []FuncID {
	slices.Sort(ids)
	return slices.Compact(ids)
}

func toID(i int) FuncID {
	id, err := safecast.Conv[FuncID](i)
	if err != nil {
		panic(fmt.Errorf("function id overflow: %w", err))
	}
	return id
}
