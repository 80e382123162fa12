// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"github.com/jllopis/prefvec/pkg/errors"
)

// Options selects and configures a store backend.
type Options struct {
	// Backend is one of "inmemory", "redis", "sqlite", "qdrant".
	Backend string

	// Addr is the backend address for redis and qdrant.
	Addr string

	// DB is the redis logical database.
	DB int

	// DSN is the sqlite database path, or ":memory:".
	DSN string

	// Collection is the qdrant collection name.
	Collection string
}

// Open constructs the store backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "inmemory":
		return NewInMemory(), nil
	case "redis":
		return NewRedis(ctx, opts.Addr, opts.DB)
	case "sqlite":
		return NewSQLite(opts.DSN)
	case "qdrant":
		collection := opts.Collection
		if collection == "" {
			collection = "user_profiles"
		}
		return NewQdrant(ctx, opts.Addr, collection)
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown store backend %q", opts.Backend)
	}
}
