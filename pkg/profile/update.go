// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"math"

	"github.com/jllopis/prefvec/pkg/vector"
)

// DefaultLearningRate is the fixed blend factor of the weight update
// rule. Higher values weigh recent observations more heavily.
const DefaultLearningRate = 0.3

// UpdateWeight folds one sentiment observation into a dimension weight
// using an exponential moving average:
//
//	observation = (score + 1) / 2        // [-1,1] -> [0,1]
//	new = current*(1-rate) + observation*rate
//
// Repeated negative feedback erodes a weight toward 0 over several
// observations rather than in one step, and the fixed rate keeps the
// update O(1) with no history beyond the current weight. Out-of-range
// inputs are clamped, not rejected: sentiment scores come from an
// external classifier that is not fully trusted. The final clamp guards
// floating-point drift.
func UpdateWeight(current, score, rate float64) float64 {
	current = vector.Clamp01(current)
	score = clampScore(score)
	observation := (score + 1.0) / 2.0
	return vector.Clamp01(current*(1.0-rate) + observation*rate)
}

// clampScore bounds a sentiment score to [-1, 1].
func clampScore(score float64) float64 {
	return math.Max(-1.0, math.Min(1.0, score))
}
