// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Package similarity ranks stored preference vectors by cosine
// similarity to a query user's vector.
package similarity

import (
	"context"
	"log/slog"
	"sort"

	"github.com/jllopis/prefvec/pkg/errors"
	"github.com/jllopis/prefvec/pkg/profile"
	"github.com/jllopis/prefvec/pkg/store"
	"github.com/jllopis/prefvec/pkg/telemetry"
	"github.com/jllopis/prefvec/pkg/vector"
)

// Result is one ranked neighbor.
type Result struct {
	UserID     string             `json:"user_id"`
	Similarity float64            `json:"similarity"`
	Weights    map[string]float64 `json:"feature_weights"`
}

// Searcher answers "which users have the most similar preferences"
// queries with a brute-force scan over the store. O(N) per query, which
// is fine at single-tenant scale; large N would need an approximate
// index, which this engine deliberately does not carry.
type Searcher struct {
	manager *profile.Manager
	store   store.Store
	metrics *telemetry.EngineMetrics
	log     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithMetrics wires engine metrics into the searcher.
func WithMetrics(metrics *telemetry.EngineMetrics) Option {
	return func(s *Searcher) { s.metrics = metrics }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Searcher) { s.log = log }
}

// NewSearcher creates a Searcher over the manager's store.
func NewSearcher(m *profile.Manager, opts ...Option) *Searcher {
	s := &Searcher{
		manager: m,
		store:   m.Store(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TopK returns the k users most similar to userID, ranked by cosine
// similarity descending with ties broken by ascending user_id so
// results are reproducible. The query user is excluded by internal key,
// never by comparing external id strings. A user with no history is
// ranked from the all-0.5 default baseline. If fewer than k other users
// exist, all of them are returned.
//
// The scan runs over a best-effort snapshot of other users' vectors;
// no cross-user atomicity is promised.
func (s *Searcher) TopK(ctx context.Context, userID string, k int) ([]Result, error) {
	if k < 1 {
		return nil, errors.Newf(errors.CodeInvalidInput, "k must be >= 1, got %d", k)
	}

	query, err := s.manager.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	queryVec := vector.FromMap(query.Weights)
	queryKey := profile.Key(userID)

	all, err := s.store.List(ctx)
	if err != nil {
		s.metrics.RecordStoreError(ctx, "top_k")
		return nil, err
	}

	results := make([]Result, 0, len(all))
	for key, rec := range all {
		if key == queryKey {
			continue
		}
		neighborID := rec.UserID
		if neighborID == "" {
			neighborID = key
		}
		results = append(results, Result{
			UserID:     neighborID,
			Similarity: vector.Cosine(queryVec, vector.Vector(rec.Vector)),
			Weights:    vector.Vector(rec.Vector).ToMap(),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].UserID < results[j].UserID
	})
	if len(results) > k {
		results = results[:k]
	}

	s.metrics.RecordSimilarityQuery(ctx)
	s.log.DebugContext(ctx, "similarity query served",
		"user_id", userID, "k", k, "candidates", len(all), "returned", len(results))
	return results, nil
}
