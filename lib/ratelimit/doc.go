// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit throttles outbound API traffic across concurrent
// bskyctl processes.
//
// The primary implementation is SharedBucket, a token bucket whose
// state lives in a small JSON file guarded by an advisory file lock,
// so parallel invocations (a follow batch in one terminal, searches in
// another) draw from one budget. When the shared state cannot be used
// the bucket degrades to process-local throttling rather than failing.
//
// Caller layers retry-with-backoff on top of a Limiter for calls that
// can come back rate limited even after local throttling.
package ratelimit
