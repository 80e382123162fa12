// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import "sync"

// keyLocks serializes read-modify-write cycles per user key. The store
// has no compare-and-swap primitive, so the lock must be held across
// the whole get/mutate/upsert sequence to prevent lost updates.
// Mutexes are kept for the life of the process; the key space is one
// entry per active user, which is fine at the intended scale.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) lock(key string) *sync.Mutex {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l
}
