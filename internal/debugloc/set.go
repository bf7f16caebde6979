package debugloc

import "slices"

// Sort sorts locs in place by Compare.
func Sort(locs []Loc) {
	slices.SortStableFunc(locs, Compare)
}

// Dedup returns the sorted unique locations of locs. The input is not
// modified.
func Dedup(locs []Loc) []Loc {
	out := slices.Clone(locs)
	Sort(out)
	return slices.Compact(out)
}

// Set collects locations, remembering first-insertion order.
type Set struct {
	order []Loc
	seen  map[Loc]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{seen: make(map[Loc]struct{})}
}

// Add inserts l and reports whether it was new.
func (s *Set) Add(l Loc) bool {
	if _, ok := s.seen[l]; ok {
		return false
	}
	s.seen[l] = struct{}{}
	s.order = append(s.order, l)
	return true
}

// Has reports whether l is in the set.
func (s *Set) Has(l Loc) bool {
	_, ok := s.seen[l]
	return ok
}

// Len returns the number of distinct locations.
func (s *Set) Len() int { return len(s.order) }

// Items returns locations in insertion order.
func (s *Set) Items() []Loc { return slices.Clone(s.order) }

// Sorted returns locations in Compare order.
func (s *Set) Sorted() []Loc {
	out := slices.Clone(s.order)
	Sort(out)
	return out
}
