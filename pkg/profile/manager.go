// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile maintains per-user preference vectors and their
// bounded evidence logs on top of a vector store.
package profile

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/jllopis/prefvec/pkg/errors"
	"github.com/jllopis/prefvec/pkg/feature"
	"github.com/jllopis/prefvec/pkg/store"
	"github.com/jllopis/prefvec/pkg/telemetry"
	"github.com/jllopis/prefvec/pkg/vector"
)

// UserProfile is the caller-facing aggregate: the original user_id, the
// per-dimension weights, and the evidence log newest-last.
type UserProfile struct {
	UserID   string             `json:"user_id"`
	Weights  map[string]float64 `json:"feature_weights"`
	Evidence []store.Evidence   `json:"evidence"`
}

// Manager orchestrates the vector store and the evidence ledger. All
// mutations on a user are serialized under a per-key lock held across
// the full read-modify-write cycle.
type Manager struct {
	store   store.Store
	rate    float64
	locks   *keyLocks
	metrics *telemetry.EngineMetrics
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLearningRate overrides the default EMA learning rate. Values
// outside (0, 1) are ignored.
func WithLearningRate(rate float64) Option {
	return func(m *Manager) {
		if rate > 0 && rate < 1 {
			m.rate = rate
		}
	}
}

// WithMetrics wires engine metrics into the manager.
func WithMetrics(metrics *telemetry.EngineMetrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock overrides the evidence timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager over the given store. The store client
// is injected: the manager never reaches for ambient global state, so
// tests can build isolated instances.
func NewManager(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		store: s,
		rate:  DefaultLearningRate,
		locks: newKeyLocks(),
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ListFeatureDimensions returns the canonical ordered dimension names.
func (m *Manager) ListFeatureDimensions() []string {
	return feature.Dimensions()
}

// GetOrCreate returns the user's profile, creating and persisting the
// default one (every weight 0.5, empty evidence) on first sight.
//
// If the store is unreachable it degrades: the returned profile is the
// unpersisted default and the error carries STORE_UNAVAILABLE, so the
// caller can keep its request path alive while still distinguishing a
// backend failure from a genuine first-time profile.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*UserProfile, error) {
	key := Key(userID)
	l := m.locks.lock(key)
	defer l.Unlock()

	rec, err := m.getOrCreate(ctx, key, userID)
	if err != nil {
		m.metrics.RecordStoreError(ctx, "get_or_create")
		m.log.WarnContext(ctx, "profile store degraded, serving default profile",
			"user_id", userID, "store", m.store.Name(), "error", err)
		return fromRecord(defaultRecord(userID)), err
	}
	return fromRecord(rec), nil
}

// getOrCreate implements the two-step tryGet + createDefault policy.
// Callers must hold the key lock.
func (m *Manager) getOrCreate(ctx context.Context, key, userID string) (*store.Record, error) {
	rec, err := m.store.Get(ctx, key)
	if err == nil {
		normalizeRecord(rec, userID)
		return rec, nil
	}
	if !stderrors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	rec = defaultRecord(userID)
	if err := m.store.Upsert(ctx, key, rec); err != nil {
		return nil, err
	}
	m.log.DebugContext(ctx, "created default profile", "user_id", userID)
	return rec, nil
}

// AddEvidence records one sentiment observation: it appends an entry to
// the evidence log (bounded at MaxEvidence, oldest evicted first) and
// folds the score into the named dimension's weight via the EMA rule.
//
// A feature outside the fixed dimension set is rejected with
// INVALID_FEATURE before any mutation. Scores outside [-1, 1] are
// clamped and accepted. Store failures fail the call outright; a silent
// discard would be indistinguishable from success.
func (m *Manager) AddEvidence(ctx context.Context, userID, feat, sentence, sentiment string, score float64) (*UserProfile, error) {
	idx, ok := feature.Index(feat)
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidFeature, "unknown feature %q", feat)
	}

	key := Key(userID)
	l := m.locks.lock(key)
	defer l.Unlock()

	rec, err := m.getOrCreate(ctx, key, userID)
	if err != nil {
		m.metrics.RecordStoreError(ctx, "add_evidence")
		return nil, err
	}

	score = clampScore(score)
	rec.Evidence = appendBounded(rec.Evidence, store.Evidence{
		Feature:   feat,
		Sentence:  sentence,
		Sentiment: sentiment,
		Score:     score,
		Timestamp: m.now().UTC(),
	}, MaxEvidence)
	rec.Vector[idx] = UpdateWeight(rec.Vector[idx], score, m.rate)

	// Full-record write: the store has no dimension-level atomic update.
	if err := m.store.Upsert(ctx, key, rec); err != nil {
		m.metrics.RecordStoreError(ctx, "add_evidence")
		return nil, err
	}
	m.metrics.RecordProfileUpdate(ctx, "add_evidence")
	m.log.DebugContext(ctx, "evidence added",
		"user_id", userID, "feature", feat, "sentiment", sentiment,
		"score", score, "weight", rec.Vector[idx])
	return fromRecord(rec), nil
}

// SetWeights overwrites the named dimensions directly, bypassing the
// EMA rule. Weights are clamped to [0, 1]; unrecognized names are
// silently ignored, as befits an administrative override (unlike the
// sentiment path, which must reject unknown features).
func (m *Manager) SetWeights(ctx context.Context, userID string, weights map[string]float64) (*UserProfile, error) {
	key := Key(userID)
	l := m.locks.lock(key)
	defer l.Unlock()

	rec, err := m.getOrCreate(ctx, key, userID)
	if err != nil {
		m.metrics.RecordStoreError(ctx, "set_weights")
		return nil, err
	}

	for name, w := range weights {
		if idx, ok := feature.Index(name); ok {
			rec.Vector[idx] = vector.Clamp01(w)
		}
	}

	if err := m.store.Upsert(ctx, key, rec); err != nil {
		m.metrics.RecordStoreError(ctx, "set_weights")
		return nil, err
	}
	m.metrics.RecordProfileUpdate(ctx, "set_weights")
	m.log.DebugContext(ctx, "weights overwritten", "user_id", userID, "count", len(weights))
	return fromRecord(rec), nil
}

// SyncRecord imports an externally stored raw profile record, replacing
// whatever the vector store currently holds for that user. Missing
// dimensions default to 0.5 and the evidence log is trimmed to the
// newest MaxEvidence entries.
func (m *Manager) SyncRecord(ctx context.Context, userID string, weights map[string]float64, evidence []store.Evidence) (*UserProfile, error) {
	if userID == "" {
		return nil, errors.Newf(errors.CodeInvalidInput, "user_id is required")
	}

	key := Key(userID)
	l := m.locks.lock(key)
	defer l.Unlock()

	rec := &store.Record{
		UserID:   userID,
		Vector:   vector.FromMap(weights),
		Evidence: trimEvidence(evidence, MaxEvidence),
	}
	if err := m.store.Upsert(ctx, key, rec); err != nil {
		m.metrics.RecordStoreError(ctx, "sync_record")
		return nil, err
	}
	m.metrics.RecordProfileUpdate(ctx, "sync_record")
	return fromRecord(rec), nil
}

// Store exposes the injected store for collaborators built on the same
// backend, such as the similarity searcher.
func (m *Manager) Store() store.Store {
	return m.store
}

func defaultRecord(userID string) *store.Record {
	return &store.Record{
		UserID:   userID,
		Vector:   vector.Default(),
		Evidence: []store.Evidence{},
	}
}

// normalizeRecord repairs a loaded record in place: the weight vector
// is re-clamped and padded to the current dimension count, and the
// user_id is backfilled for records written before it was stored.
func normalizeRecord(rec *store.Record, userID string) {
	if rec.UserID == "" {
		rec.UserID = userID
	}
	if len(rec.Vector) != feature.Count() {
		v := vector.Default()
		copy(v, rec.Vector)
		rec.Vector = v
	}
	for i, w := range rec.Vector {
		rec.Vector[i] = vector.Clamp01(w)
	}
}

func trimEvidence(evidence []store.Evidence, max int) []store.Evidence {
	if len(evidence) > max {
		evidence = evidence[len(evidence)-max:]
	}
	out := make([]store.Evidence, len(evidence))
	copy(out, evidence)
	return out
}

func fromRecord(rec *store.Record) *UserProfile {
	return &UserProfile{
		UserID:   rec.UserID,
		Weights:  vector.Vector(rec.Vector).ToMap(),
		Evidence: trimEvidence(rec.Evidence, MaxEvidence),
	}
}
