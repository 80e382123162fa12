// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import "github.com/jllopis/prefvec/pkg/store"

// MaxEvidence bounds the per-user evidence log. When an append exceeds
// the bound, the oldest entries are dropped first; order is never
// changed (oldest first, newest last).
const MaxEvidence = 50

// appendBounded appends entry to log and evicts from the front until
// the log holds at most max entries.
func appendBounded(log []store.Evidence, entry store.Evidence, max int) []store.Evidence {
	log = append(log, entry)
	if max > 0 && len(log) > max {
		log = log[len(log)-max:]
	}
	return log
}
