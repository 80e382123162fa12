package feature

import "testing"

func TestIndexMatchesCanonicalOrder(t *testing.T) {
	dims := Dimensions()
	if len(dims) != Count() {
		t.Fatalf("expected %d dimensions, got %d", Count(), len(dims))
	}
	for i, name := range dims {
		idx, ok := Index(name)
		if !ok {
			t.Fatalf("dimension %q not indexed", name)
		}
		if idx != i {
			t.Fatalf("dimension %q: expected index %d, got %d", name, i, idx)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("price") {
		t.Fatal("price should be a valid dimension")
	}
	if Valid("weather") {
		t.Fatal("weather should not be a valid dimension")
	}
	if Valid("") {
		t.Fatal("empty name should not be valid")
	}
}

func TestDimensionsReturnsCopy(t *testing.T) {
	dims := Dimensions()
	dims[0] = "mutated"
	if Dimensions()[0] != "size" {
		t.Fatal("Dimensions must return a copy")
	}
}
