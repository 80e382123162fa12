// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Package vector implements the preference vector type and the cosine
// similarity measure used to compare users.
package vector

import (
	"math"

	"github.com/jllopis/prefvec/pkg/feature"
)

// DefaultWeight is the baseline importance assigned to every dimension
// of a never-seen user.
const DefaultWeight = 0.5

// Vector is an ordered sequence of weights, one per feature dimension,
// each in [0, 1]. Position i corresponds to feature.Dimensions()[i].
type Vector []float64

// Default returns a new vector with every weight set to DefaultWeight.
func Default() Vector {
	v := make(Vector, feature.Count())
	for i := range v {
		v[i] = DefaultWeight
	}
	return v
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// ToMap converts v into a name->weight map keyed by the canonical
// dimension names, clamping each entry to [0, 1].
func (v Vector) ToMap() map[string]float64 {
	m := make(map[string]float64, len(v))
	for i, name := range feature.Dimensions() {
		w := DefaultWeight
		if i < len(v) {
			w = Clamp01(v[i])
		}
		m[name] = w
	}
	return m
}

// FromMap builds a vector from a name->weight map. Missing dimensions
// get DefaultWeight, unknown names are ignored, and every weight is
// clamped to [0, 1].
func FromMap(weights map[string]float64) Vector {
	v := Default()
	for name, w := range weights {
		if i, ok := feature.Index(name); ok {
			v[i] = Clamp01(w)
		}
	}
	return v
}

// Clamp01 bounds x to the closed interval [0, 1].
func Clamp01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}

// Cosine returns the cosine similarity dot(a,b)/(|a||b|) clamped to
// [0, 1]. Weights are non-negative by construction so the raw value
// cannot be negative; the clamp guards floating-point overshoot past 1.
// A zero-length or zero-norm operand yields 0.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return Clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
