// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "context"

// Store is the vector store contract consumed by the profile manager
// and the similarity searcher.
//
// Keys are opaque internal identifiers derived from the external
// user_id; the Record carries the original user_id back out. Get must
// distinguish a miss (ErrNotFound) from a backend failure
// (STORE_UNAVAILABLE) so callers can apply default-on-miss policies
// without masking outages.
type Store interface {
	// Name returns the backend name, for logs and metrics.
	Name() string

	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Record, error)

	// Upsert stores the record under key, replacing any previous value.
	Upsert(ctx context.Context, key string, rec *Record) error

	// List returns a snapshot of all stored records keyed by internal
	// key. The similarity search scans this snapshot; no cross-key
	// atomicity is promised.
	List(ctx context.Context) (map[string]*Record, error)

	// Close releases backend resources.
	Close() error
}
