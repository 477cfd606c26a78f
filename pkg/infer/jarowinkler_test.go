package infer

import "testing"

func TestJaroWinklerIdentical(t *testing.T) {
	if got := jaroWinkler("filter", "filter"); got != 1 {
		t.Errorf("jaroWinkler(same, same) = %v, want 1", got)
	}
}

func TestJaroWinklerCloseMisspelling(t *testing.T) {
	got := jaroWinkler("lenght", "length")
	if got < 0.85 {
		t.Errorf("jaroWinkler(lenght, length) = %v, want >= 0.85", got)
	}
}

func TestJaroWinklerUnrelated(t *testing.T) {
	got := jaroWinkler("foo", "zzzzzzzz")
	if got >= 0.85 {
		t.Errorf("jaroWinkler(foo, zzzzzzzz) = %v, want < 0.85", got)
	}
}

func TestMostSimilarThreshold(t *testing.T) {
	candidates := []string{"length", "left", "lower"}
	got, ok := mostSimilar("lenght", candidates)
	if !ok || got != "length" {
		t.Errorf("mostSimilar(lenght) = (%q, %v), want (length, true)", got, ok)
	}

	_, ok = mostSimilar("zzzzzzzzzz", candidates)
	if ok {
		t.Errorf("mostSimilar(zzzzzzzzzz) should find nothing above threshold")
	}
}
