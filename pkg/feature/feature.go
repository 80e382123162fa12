// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Package feature defines the fixed set of preference dimensions tracked
// by the engine. The set and its ordering are build-time constants:
// serialized vectors are positional, so index assignment must be stable
// across restarts and deployments.
package feature

// Names of the tracked dimensions, in canonical order. Index i in any
// persisted vector is the weight for names[i]. Append-only: never reorder
// or remove entries once vectors have been persisted.
var names = []string{
	"size",
	"color",
	"material",
	"brand",
	"price",
	"trend",
	"durability",
	"shipping",
}

var indexOf = func() map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[n] = i
	}
	return m
}()

// Count returns the number of dimensions, i.e. the length of every
// preference vector.
func Count() int { return len(names) }

// Dimensions returns the dimension names in canonical order. The
// returned slice is a copy and safe to modify.
func Dimensions() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Index returns the vector position of the named dimension.
func Index(name string) (int, bool) {
	i, ok := indexOf[name]
	return i, ok
}

// Valid reports whether name is a recognized dimension.
func Valid(name string) bool {
	_, ok := indexOf[name]
	return ok
}
