package opt

import "testing"

func TestCompare_NoneBeforeSome(t *testing.T) {
	tests := []struct {
		name string
		a, b Value[uint32]
		want int
	}{
		{name: "none none", a: None[uint32](), b: None[uint32](), want: 0},
		{name: "none some zero", a: None[uint32](), b: Some[uint32](0), want: -1},
		{name: "some none", a: Some[uint32](7), b: None[uint32](), want: 1},
		{name: "some less", a: Some[uint32](1), b: Some[uint32](2), want: -1},
		{name: "some equal", a: Some[uint32](3), b: Some[uint32](3), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Fatalf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValue_Comparable(t *testing.T) {
	if Some("x") != Some("x") {
		t.Fatal("equal Somes must be ==")
	}
	if Some("") == None[string]() {
		t.Fatal("Some(\"\") must differ from None")
	}
	seen := map[Value[string]]int{Some("a"): 1, None[string](): 2}
	if seen[Some("a")] != 1 || seen[None[string]()] != 2 {
		t.Fatal("Value must work as a map key")
	}
}

func TestValue_Accessors(t *testing.T) {
	v := FromPair(uint32(9), true)
	if got, ok := v.Get(); !ok || got != 9 {
		t.Fatalf("Get() = %d, %v", got, ok)
	}
	if FromPair(uint32(9), false).IsSome() {
		t.Fatal("FromPair with ok=false must be None")
	}
	if None[string]().Or("dflt") != "dflt" {
		t.Fatal("Or must fall back on None")
	}
	if p := Some(4).Ptr(); p == nil || *p != 4 {
		t.Fatal("Ptr must copy the value")
	}
	if FromPtr[int](nil).IsSome() {
		t.Fatal("FromPtr(nil) must be None")
	}
}
