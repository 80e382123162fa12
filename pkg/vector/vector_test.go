package vector

import (
	"math"
	"testing"

	"github.com/jllopis/prefvec/pkg/feature"
)

func TestDefault(t *testing.T) {
	v := Default()
	if len(v) != feature.Count() {
		t.Fatalf("expected %d weights, got %d", feature.Count(), len(v))
	}
	for i, w := range v {
		if w != DefaultWeight {
			t.Fatalf("weight %d: expected %v, got %v", i, DefaultWeight, w)
		}
	}
}

func TestCosineIdentical(t *testing.T) {
	v := Vector{0.9, 0.1, 0.5, 0.5, 0.3, 0.7, 0.2, 0.8}
	got := Cosine(v, v)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("cosine of a vector with itself: expected 1.0, got %v", got)
	}
}

func TestCosineBounds(t *testing.T) {
	a := Vector{1, 0, 0, 0, 0, 0, 0, 0}
	b := Vector{0, 1, 0, 0, 0, 0, 0, 0}
	if got := Cosine(a, b); got != 0 {
		t.Fatalf("orthogonal vectors: expected 0, got %v", got)
	}
	if got := Cosine(Vector{}, Vector{}); got != 0 {
		t.Fatalf("empty vectors: expected 0, got %v", got)
	}
	if got := Cosine(a, Vector{0, 0, 0, 0, 0, 0, 0, 0}); got != 0 {
		t.Fatalf("zero-norm operand: expected 0, got %v", got)
	}
}

func TestCosineMismatchedLength(t *testing.T) {
	if got := Cosine(Vector{1, 0}, Vector{1}); got != 0 {
		t.Fatalf("mismatched lengths: expected 0, got %v", got)
	}
}

func TestRoundTripMap(t *testing.T) {
	v := Vector{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	got := FromMap(v.ToMap())
	for i := range v {
		if math.Abs(got[i]-v[i]) > 1e-12 {
			t.Fatalf("index %d: expected %v, got %v", i, v[i], got[i])
		}
	}
}

func TestFromMapDefaultsAndClamps(t *testing.T) {
	v := FromMap(map[string]float64{
		"price":   1.7,
		"size":    -0.2,
		"unknown": 0.9,
	})
	if i, _ := feature.Index("price"); v[i] != 1.0 {
		t.Fatalf("price should clamp to 1.0, got %v", v[i])
	}
	if i, _ := feature.Index("size"); v[i] != 0.0 {
		t.Fatalf("size should clamp to 0.0, got %v", v[i])
	}
	if i, _ := feature.Index("color"); v[i] != DefaultWeight {
		t.Fatalf("missing dimension should default to %v, got %v", DefaultWeight, v[i])
	}
}
