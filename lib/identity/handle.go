// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "strings"

// NormalizeHandle canonicalizes a user-supplied actor reference.
//
// Leading and trailing whitespace is trimmed, a single leading '@' is
// stripped, and a bare name with no dot (e.g. "alice") gets the
// default ".bsky.social" suffix. DIDs and already-qualified handles
// pass through unchanged, so the function is idempotent.
func NormalizeHandle(raw string) string {
	handle := strings.TrimSpace(raw)
	handle = strings.TrimPrefix(handle, "@")
	if handle != "" && !strings.Contains(handle, ".") && !strings.HasPrefix(handle, "did:") {
		handle += ".bsky.social"
	}
	return handle
}

// IsDID reports whether the actor reference is a DID rather than a
// handle.
func IsDID(actor string) bool {
	return strings.HasPrefix(actor, "did:")
}
