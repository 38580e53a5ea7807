// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package atproto is a typed client for the slice of the AT Protocol
// XRPC surface that bskyctl uses: session management, actor lookups,
// the social graph, posting with rich-text facets, and notifications.
//
// The client holds a Session (access and refresh JWTs). A request that
// fails with ExpiredToken refreshes the session and replays once;
// OnSessionChange lets the caller persist the rotated tokens.
//
// Remote failures surface as *Error values. Callers classify them with
// the Is* predicates (IsRateLimited, IsConflict, ...) via errors.As,
// never by matching message text.
package atproto
