package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRecord(userID string) *Record {
	return &Record{
		UserID: userID,
		Vector: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		Evidence: []Evidence{
			{
				Feature:   "price",
				Sentence:  "too expensive for what it is",
				Sentiment: "negative",
				Score:     -0.8,
				Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestInMemoryGetMiss(t *testing.T) {
	s := NewInMemory()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryRoundTrip(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if err := s.Upsert(ctx, "k1", testRecord("u_001")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UserID != "u_001" {
		t.Fatalf("expected u_001, got %q", got.UserID)
	}
	if len(got.Evidence) != 1 || got.Evidence[0].Feature != "price" {
		t.Fatalf("evidence not preserved: %+v", got.Evidence)
	}
}

func TestInMemoryGetReturnsCopy(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	_ = s.Upsert(ctx, "k1", testRecord("u_001"))

	got, _ := s.Get(ctx, "k1")
	got.Vector[0] = 0.99
	got.UserID = "mutated"

	again, _ := s.Get(ctx, "k1")
	if again.Vector[0] != 0.5 || again.UserID != "u_001" {
		t.Fatal("Get must return an independent copy")
	}
}

func TestInMemoryList(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	_ = s.Upsert(ctx, "k1", testRecord("u_001"))
	_ = s.Upsert(ctx, "k2", testRecord("u_002"))

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if all["k2"].UserID != "u_002" {
		t.Fatalf("expected u_002 under k2, got %q", all["k2"].UserID)
	}
}

func TestInMemoryUpsertOverwrites(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	_ = s.Upsert(ctx, "k1", testRecord("u_001"))

	updated := testRecord("u_001")
	updated.Vector[0] = 0.9
	_ = s.Upsert(ctx, "k1", updated)

	got, _ := s.Get(ctx, "k1")
	if got.Vector[0] != 0.9 {
		t.Fatalf("last write should win, got %v", got.Vector[0])
	}
}
