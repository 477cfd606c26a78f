package value

import "testing"

func TestNumberString(t *testing.T) {
	tests := []struct {
		name     string
		n        Number
		expected string
	}{
		{"integral", Number(3), "3"},
		{"integral negative", Number(-2), "-2"},
		{"fractional", Number(3.5), "3.5"},
		{"near-integral display rounds", Number(2.9999999999), "3"},
		{"zero", Number(0), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNumberEqExactNotEpsilon(t *testing.T) {
	a := Number(3)
	b := Number(2.9999999999) // within display epsilon, but not equal
	if a.Eq(b) {
		t.Errorf("Eq() should not tolerate the display epsilon: %v == %v", a, b)
	}
	if !a.Eq(Number(3)) {
		t.Errorf("Eq() should hold for identical values")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"none", None{}, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero number", Number(0), false},
		{"nonzero number", Number(1), true},
		{"empty string", String(""), false},
		{"nonempty string", String("x"), true},
		{"empty array", NewArray(), false},
		{"nonempty array", NewArray(Number(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.v); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestArrayGet(t *testing.T) {
	a := NewArray(Number(1), Number(2), Number(3))
	if v, ok := a.Get(1); !ok || v != Number(2) {
		t.Errorf("Get(1) = %v, %v, want 2, true", v, ok)
	}
	if _, ok := a.Get(10); ok {
		t.Errorf("Get(10) should be out of range")
	}
	if _, ok := a.Get(-1); ok {
		t.Errorf("Get(-1) should be out of range")
	}
}

func TestDictInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set("z", Number(1))
	d.Set("a", Number(2))
	d.Set("m", Number(3))

	want := []string{"z", "a", "m"}
	got := d.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	d.Set("a", Number(20)) // update preserves position
	got = d.Keys()
	if got[1] != "a" {
		t.Errorf("updating an existing key moved its position: %v", got)
	}
	v, _ := d.Get("a")
	if v != Number(20) {
		t.Errorf("Get(a) = %v, want 20", v)
	}

	d.Delete("z")
	got = d.Keys()
	if len(got) != 2 || got[0] != "a" || got[1] != "m" {
		t.Errorf("Delete(z) left keys = %v", got)
	}
}

func TestEqualStructural(t *testing.T) {
	a := NewArray(Number(1), String("x"))
	b := NewArray(Number(1), String("x"))
	c := NewArray(Number(1), String("y"))

	if !Equal(a, b) {
		t.Errorf("expected structurally equal arrays to be Equal")
	}
	if Equal(a, c) {
		t.Errorf("expected differing arrays to be unequal")
	}
	if Equal(Number(1), String("1")) {
		t.Errorf("cross-kind comparison must never be equal")
	}
}

func TestEqualDict(t *testing.T) {
	d1 := NewDict()
	d1.Set("a", Number(1))
	d2 := NewDict()
	d2.Set("a", Number(1))
	if !Equal(d1, d2) {
		t.Errorf("expected structurally equal dicts to be Equal")
	}
	d2.Set("b", Number(2))
	if Equal(d1, d2) {
		t.Errorf("expected dicts of differing length to be unequal")
	}
}
