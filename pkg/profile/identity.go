// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import "github.com/google/uuid"

// keyNamespace seeds the deterministic user_id -> internal key mapping.
// It is part of the persisted format contract: changing it silently
// invalidates every existing key. It matches RFC 4122's DNS namespace
// (6ba7b810-9dad-11d1-80b4-00c04fd430c8).
var keyNamespace = uuid.NameSpaceDNS

// Key derives the internal store key for an external user identifier.
// The mapping is a version-5 UUID: deterministic, collision-resistant,
// and one-way. The original user_id travels in the record metadata so
// callers never see this key.
func Key(userID string) string {
	return uuid.NewSHA1(keyNamespace, []byte(userID)).String()
}
