package callgraph

import "slices"

// Topo is a bottom-up order: every function comes after all of its callees.
type Topo struct {
	Order   []FuncID   // linear order of the functions that could be placed
	Batches [][]FuncID // waves of functions whose callees are all placed
	Cyclic  bool
	// Unordered holds functions that are recursive or call into recursion.
	Unordered []FuncID
}

// BottomUp sorts g with Kahn's algorithm over the reversed call edges.
func BottomUp(g Graph) *Topo {
	n := len(g.Names)
	pending := make([]int, n)
	for i := range n {
		pending[i] = len(g.Callees[i])
	}

	topo := &Topo{Order: make([]FuncID, 0, n)}
	current := make([]FuncID, 0, n)
	for i := range n {
		if pending[i] == 0 {
			current = append(current, toID(i))
		}
	}

	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		var next []FuncID
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, caller := range g.Callers[id] {
				pending[caller]--
				if pending[caller] == 0 {
					next = append(next, caller)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != n {
		topo.Cyclic = true
		for i := range n {
			if pending[i] > 0 {
				topo.Unordered = append(topo.Unordered, toID(i))
			}
		}
	}
	return topo
}

// Recursive reports the functions that lie on a call cycle, in ID order.
// Unlike Topo.Unordered it excludes functions that only call into a cycle.
func Recursive(g Graph) []FuncID {
	var out []FuncID
	for i := range g.Names {
		id := toID(i)
		if reaches(g, id, id) {
			out = append(out, id)
		}
	}
	return out
}

// reaches reports whether to is reachable from from by at least one edge.
func reaches(g Graph, from, to FuncID) bool {
	seen := make([]bool, len(g.Names))
	stack := slices.Clone(g.Callees[from])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.Callees[id]...)
	}
	return false
}
