package debugloc

import (
	"testing"

	"irgraph/internal/opt"
)

func sample() []Loc {
	dirs := []opt.Value[string]{opt.None[string](), opt.Some(""), opt.Some("/src"), opt.Some("/src/b")}
	files := []string{"a.c", "b.c"}
	lines := []uint32{0, 3, 10}
	cols := []opt.Value[uint32]{opt.None[uint32](), opt.Some[uint32](0), opt.Some[uint32](5)}

	var out []Loc
	for _, d := range dirs {
		for _, f := range files {
			for _, l := range lines {
				for _, c := range cols {
					out = append(out, Loc{Line: l, Col: c, Filename: f, Directory: d})
				}
			}
		}
	}
	return out
}

func TestCompare_KeyOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b Loc
		want int
	}{
		{
			name: "directory dominates filename",
			a:    Loc{Filename: "z.c", Directory: opt.Some("/a")},
			b:    Loc{Filename: "a.c", Directory: opt.Some("/b")},
			want: -1,
		},
		{
			name: "absent directory sorts first",
			a:    Loc{Filename: "z.c", Line: 99},
			b:    Loc{Filename: "a.c", Directory: opt.Some("")},
			want: -1,
		},
		{
			name: "filename before line",
			a:    Loc{Filename: "a.c", Line: 50},
			b:    Loc{Filename: "b.c", Line: 1},
			want: -1,
		},
		{
			name: "line before column",
			a:    Loc{Filename: "a.c", Line: 2, Col: opt.Some[uint32](1)},
			b:    Loc{Filename: "a.c", Line: 1, Col: opt.Some[uint32](9)},
			want: 1,
		},
		{
			name: "absent column sorts before column zero",
			a:    Loc{Filename: "a.c", Line: 1},
			b:    Loc{Filename: "a.c", Line: 1, Col: opt.Some[uint32](0)},
			want: -1,
		},
		{
			name: "bytewise filename order",
			a:    Loc{Filename: "B.c"},
			b:    Loc{Filename: "a.c"},
			want: -1,
		},
		{
			name: "equal",
			a:    Loc{Filename: "a.c", Line: 4, Col: opt.Some[uint32](2), Directory: opt.Some("/x")},
			b:    Loc{Filename: "a.c", Line: 4, Col: opt.Some[uint32](2), Directory: opt.Some("/x")},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Fatalf("Compare = %d, want %d", got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Fatalf("reverse Compare = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestCompare_TotalOrderLaws(t *testing.T) {
	locs := sample()
	for _, a := range locs {
		if Compare(a, a) != 0 {
			t.Fatalf("irreflexivity broken for %v", a)
		}
		for _, b := range locs {
			ab := Compare(a, b)
			if ab != -Compare(b, a) {
				t.Fatalf("antisymmetry broken for %v, %v", a, b)
			}
			if (ab == 0) != (a == b) {
				t.Fatalf("Compare/== disagree for %#v, %#v", a, b)
			}
			if ab == 0 && a.Hash() != b.Hash() {
				t.Fatalf("equal locations hash differently: %v", a)
			}
			for _, c := range locs {
				if ab < 0 && Compare(b, c) < 0 && Compare(a, c) >= 0 {
					t.Fatalf("transitivity broken: %v < %v < %v", a, b, c)
				}
			}
		}
	}
}

func TestHash_DistinguishesFields(t *testing.T) {
	seen := make(map[uint64]Loc)
	for _, l := range sample() {
		if prev, dup := seen[l.Hash()]; dup {
			t.Fatalf("hash collision between %#v and %#v", prev, l)
		}
		seen[l.Hash()] = l
	}
}

func TestLoc_String(t *testing.T) {
	tests := []struct {
		loc  Loc
		want string
	}{
		{Loc{Filename: "a.c", Line: 3}, "a.c:3"},
		{Loc{Filename: "a.c", Line: 3, Col: opt.Some[uint32](7), Directory: opt.Some("/src")}, "/src/a.c:3:7"},
		{Loc{Filename: "/abs/a.c", Line: 1, Directory: opt.Some("/src")}, "/abs/a.c:1"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDedupAndSet(t *testing.T) {
	a := Loc{Filename: "a.c", Line: 2}
	b := Loc{Filename: "a.c", Line: 1}
	c := Loc{Filename: "a.c", Line: 1, Col: opt.Some[uint32](4)}

	in := []Loc{a, b, c, a, b}
	got := Dedup(in)
	want := []Loc{b, c, a}
	if len(got) != len(want) {
		t.Fatalf("Dedup len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Dedup[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if in[0] != a {
		t.Fatal("Dedup must not reorder its input")
	}

	s := NewSet()
	for _, l := range in {
		s.Add(l)
	}
	if s.Len() != 3 || !s.Has(c) {
		t.Fatalf("set contents wrong: %v", s.Items())
	}
	if items := s.Items(); items[0] != a || items[1] != b || items[2] != c {
		t.Fatalf("insertion order lost: %v", items)
	}
	if sorted := s.Sorted(); sorted[0] != b || sorted[2] != a {
		t.Fatalf("sorted order wrong: %v", sorted)
	}
}
