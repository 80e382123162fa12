package profile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	prefvecerrors "github.com/jllopis/prefvec/pkg/errors"
	"github.com/jllopis/prefvec/pkg/feature"
	"github.com/jllopis/prefvec/pkg/store"
)

// downStore simulates an unreachable backend.
type downStore struct{}

func (downStore) Name() string { return "down" }
func (downStore) Get(context.Context, string) (*store.Record, error) {
	return nil, store.Unavailable("get", errors.New("connection refused"))
}
func (downStore) Upsert(context.Context, string, *store.Record) error {
	return store.Unavailable("upsert", errors.New("connection refused"))
}
func (downStore) List(context.Context) (map[string]*store.Record, error) {
	return nil, store.Unavailable("list", errors.New("connection refused"))
}
func (downStore) Close() error { return nil }

func newTestManager(opts ...Option) (*Manager, *store.InMemory) {
	s := store.NewInMemory()
	return NewManager(s, opts...), s
}

func TestGetOrCreateDefaults(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	p, err := m.GetOrCreate(ctx, "u_001")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if p.UserID != "u_001" {
		t.Fatalf("expected user id to round-trip, got %q", p.UserID)
	}
	if len(p.Weights) != feature.Count() {
		t.Fatalf("expected %d weights, got %d", feature.Count(), len(p.Weights))
	}
	for name, w := range p.Weights {
		if w != 0.5 {
			t.Fatalf("dimension %q: expected default 0.5, got %v", name, w)
		}
	}
	if len(p.Evidence) != 0 {
		t.Fatalf("expected empty evidence, got %d entries", len(p.Evidence))
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	first, err := m.GetOrCreate(ctx, "u_fresh")
	if err != nil {
		t.Fatalf("first GetOrCreate failed: %v", err)
	}
	second, err := m.GetOrCreate(ctx, "u_fresh")
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	for name := range first.Weights {
		if first.Weights[name] != second.Weights[name] {
			t.Fatalf("dimension %q: %v != %v", name, first.Weights[name], second.Weights[name])
		}
	}
}

func TestGetOrCreatePersists(t *testing.T) {
	m, s := newTestManager()
	ctx := context.Background()

	if _, err := m.GetOrCreate(ctx, "u_001"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	rec, err := s.Get(ctx, Key("u_001"))
	if err != nil {
		t.Fatalf("default profile was not persisted: %v", err)
	}
	if rec.UserID != "u_001" {
		t.Fatalf("expected original user_id in record, got %q", rec.UserID)
	}
}

func TestGetOrCreateDegradedMode(t *testing.T) {
	m := NewManager(downStore{})
	ctx := context.Background()

	p, err := m.GetOrCreate(ctx, "u_001")
	if err == nil {
		t.Fatal("expected a STORE_UNAVAILABLE error")
	}
	if !prefvecerrors.HasCode(err, prefvecerrors.CodeStoreUnavailable) {
		t.Fatalf("expected STORE_UNAVAILABLE code, got %v", err)
	}
	if p == nil {
		t.Fatal("degraded mode must still return a default profile")
	}
	for name, w := range p.Weights {
		if w != 0.5 {
			t.Fatalf("dimension %q: expected default 0.5, got %v", name, w)
		}
	}
}

func TestAddEvidenceUpdatesSingleDimension(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	p, err := m.AddEvidence(ctx, "u_001", "price", "way too expensive", "negative", -1.0)
	if err != nil {
		t.Fatalf("AddEvidence failed: %v", err)
	}
	if got := p.Weights["price"]; math.Abs(got-0.35) > 1e-12 {
		t.Fatalf("price: expected 0.35, got %v", got)
	}
	for _, name := range []string{"size", "color", "material", "brand", "trend", "durability", "shipping"} {
		if p.Weights[name] != 0.5 {
			t.Fatalf("dimension %q must be untouched, got %v", name, p.Weights[name])
		}
	}
	if len(p.Evidence) != 1 {
		t.Fatalf("expected 1 evidence entry, got %d", len(p.Evidence))
	}
	e := p.Evidence[0]
	if e.Feature != "price" || e.Sentiment != "negative" || e.Score != -1.0 {
		t.Fatalf("unexpected evidence entry: %+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Fatal("evidence entry must be timestamped")
	}
}

func TestAddEvidenceInvalidFeature(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	if _, err := m.GetOrCreate(ctx, "u_001"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	_, err := m.AddEvidence(ctx, "u_001", "nonexistent-feature", "some text", "positive", 0.5)
	if !prefvecerrors.HasCode(err, prefvecerrors.CodeInvalidFeature) {
		t.Fatalf("expected INVALID_FEATURE, got %v", err)
	}

	// No partial update: vector and evidence unchanged.
	p, err := m.GetOrCreate(ctx, "u_001")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	for name, w := range p.Weights {
		if w != 0.5 {
			t.Fatalf("dimension %q mutated by rejected call: %v", name, w)
		}
	}
	if len(p.Evidence) != 0 {
		t.Fatalf("evidence mutated by rejected call: %d entries", len(p.Evidence))
	}
}

func TestAddEvidenceFailsOutrightWhenStoreDown(t *testing.T) {
	m := NewManager(downStore{})
	p, err := m.AddEvidence(context.Background(), "u_001", "price", "text", "positive", 0.5)
	if err == nil {
		t.Fatal("expected error when store is down")
	}
	if p != nil {
		t.Fatal("a failed update must not pretend to return a profile")
	}
}

func TestEvidenceBound(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		if _, err := m.AddEvidence(ctx, "u_001", "size", fmt.Sprintf("observation %d", i), "positive", 0.5); err != nil {
			t.Fatalf("AddEvidence %d failed: %v", i, err)
		}
	}
	p, err := m.GetOrCreate(ctx, "u_001")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if len(p.Evidence) != MaxEvidence {
		t.Fatalf("expected exactly %d entries, got %d", MaxEvidence, len(p.Evidence))
	}
	// The first 10 of the 60 are gone; order is preserved, newest last.
	if got := p.Evidence[0].Sentence; got != "observation 10" {
		t.Fatalf("expected oldest surviving entry to be observation 10, got %q", got)
	}
	if got := p.Evidence[MaxEvidence-1].Sentence; got != "observation 59" {
		t.Fatalf("expected newest entry to be observation 59, got %q", got)
	}
}

func TestSetWeights(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	p, err := m.SetWeights(ctx, "u_001", map[string]float64{
		"price":   0.9,
		"size":    1.7,  // clamped to 1
		"color":   -0.3, // clamped to 0
		"unknown": 0.4,  // silently ignored
	})
	if err != nil {
		t.Fatalf("SetWeights failed: %v", err)
	}
	if p.Weights["price"] != 0.9 {
		t.Fatalf("price: expected 0.9, got %v", p.Weights["price"])
	}
	if p.Weights["size"] != 1.0 {
		t.Fatalf("size: expected clamp to 1.0, got %v", p.Weights["size"])
	}
	if p.Weights["color"] != 0.0 {
		t.Fatalf("color: expected clamp to 0.0, got %v", p.Weights["color"])
	}
	if _, ok := p.Weights["unknown"]; ok {
		t.Fatal("unknown dimension leaked into the profile")
	}
	if p.Weights["brand"] != 0.5 {
		t.Fatalf("brand must keep its default, got %v", p.Weights["brand"])
	}
}

func TestSetWeightsBypassesBlending(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	p, err := m.SetWeights(ctx, "u_001", map[string]float64{"trend": 0.123})
	if err != nil {
		t.Fatalf("SetWeights failed: %v", err)
	}
	if p.Weights["trend"] != 0.123 {
		t.Fatalf("expected direct overwrite 0.123, got %v", p.Weights["trend"])
	}
}

func TestSyncRecord(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	evidence := make([]store.Evidence, 55)
	for i := range evidence {
		evidence[i] = store.Evidence{
			Feature:   "brand",
			Sentence:  fmt.Sprintf("imported %d", i),
			Sentiment: "positive",
			Score:     0.4,
			Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		}
	}
	p, err := m.SyncRecord(ctx, "u_ext", map[string]float64{"brand": 0.8}, evidence)
	if err != nil {
		t.Fatalf("SyncRecord failed: %v", err)
	}
	if p.Weights["brand"] != 0.8 {
		t.Fatalf("brand: expected 0.8, got %v", p.Weights["brand"])
	}
	if p.Weights["price"] != 0.5 {
		t.Fatalf("missing dimensions must default to 0.5, got %v", p.Weights["price"])
	}
	if len(p.Evidence) != MaxEvidence {
		t.Fatalf("imported evidence must be trimmed to %d, got %d", MaxEvidence, len(p.Evidence))
	}
	if p.Evidence[0].Sentence != "imported 5" {
		t.Fatalf("expected oldest surviving entry imported 5, got %q", p.Evidence[0].Sentence)
	}

	if _, err := m.SyncRecord(ctx, "", nil, nil); !prefvecerrors.HasCode(err, prefvecerrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for empty user_id, got %v", err)
	}
}

func TestConcurrentAddEvidenceLosesNoUpdate(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := m.AddEvidence(ctx, "u_hot", "color", "same score every time", "positive", 1.0); err != nil {
				t.Errorf("AddEvidence failed: %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := m.GetOrCreate(ctx, "u_hot")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if len(p.Evidence) != n {
		t.Fatalf("lost updates: expected %d evidence entries, got %d", n, len(p.Evidence))
	}

	// All scores are equal, so the fold result is order-independent:
	// the final weight must equal the sequential fold over n updates.
	want := 0.5
	for i := 0; i < n; i++ {
		want = UpdateWeight(want, 1.0, DefaultLearningRate)
	}
	if got := p.Weights["color"]; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected folded weight %v, got %v", want, got)
	}
}

func TestListFeatureDimensions(t *testing.T) {
	m, _ := newTestManager()
	dims := m.ListFeatureDimensions()
	if len(dims) != feature.Count() {
		t.Fatalf("expected %d dimensions, got %d", feature.Count(), len(dims))
	}
	if dims[0] != "size" || dims[len(dims)-1] != "shipping" {
		t.Fatalf("canonical order broken: %v", dims)
	}
}
