// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"
)

// InMemory is an in-process store backend for tests and development.
// Records are deep-copied on the way in and out so callers can mutate
// their copies freely.
type InMemory struct {
	mu   sync.RWMutex
	data map[string]*Record
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{data: make(map[string]*Record)}
}

func (m *InMemory) Name() string { return "inmemory" }

func (m *InMemory) Get(_ context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *InMemory) Upsert(_ context.Context, key string, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = rec.Clone()
	return nil
}

func (m *InMemory) List(_ context.Context) (map[string]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Record, len(m.data))
	for k, rec := range m.data {
		out[k] = rec.Clone()
	}
	return out, nil
}

func (m *InMemory) Close() error { return nil }
