// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Package store provides the vector store contract and its backends.
// The store keeps a single authoritative record per key, last write
// wins; there are no merge semantics.
package store

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/jllopis/prefvec/pkg/errors"
)

// ErrNotFound indicates no record exists under the requested key.
// Distinct from backend failure: callers must never treat an unreachable
// store as an empty one.
var ErrNotFound = errors.New(errors.CodeNotFound, "store: record not found", nil)

// Unavailable wraps a backend failure as a STORE_UNAVAILABLE error.
func Unavailable(op string, cause error) error {
	return errors.New(errors.CodeStoreUnavailable, "store: "+op+" failed", cause)
}

// Evidence is one persisted observation in a profile's evidence log.
// Entries are immutable once created.
type Evidence struct {
	Feature   string    `json:"feature"`
	Sentence  string    `json:"sentence"`
	Sentiment string    `json:"sentiment"` // "positive" or "negative"
	Score     float64   `json:"score"`     // [-1, 1]
	Timestamp time.Time `json:"timestamp"`
}

// Record is the stored shape of one user profile: the positional weight
// vector plus metadata. UserID keeps the original external identifier so
// it can be returned verbatim; callers never see the internal key.
type Record struct {
	UserID   string     `json:"user_id"`
	Vector   []float64  `json:"vector"`
	Evidence []Evidence `json:"evidence"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		UserID:   r.UserID,
		Vector:   make([]float64, len(r.Vector)),
		Evidence: make([]Evidence, len(r.Evidence)),
	}
	copy(out.Vector, r.Vector)
	copy(out.Evidence, r.Evidence)
	return out
}

// encodeRecord and decodeRecord are the shared wire codec for the
// byte-oriented backends (redis, sqlite).
func encodeRecord(r *Record) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// encodeEvidence serializes an evidence log for backends that carry it
// as an opaque payload string (qdrant).
func encodeEvidence(ev []Evidence) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeEvidence(raw string) ([]Evidence, error) {
	var ev []Evidence
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
