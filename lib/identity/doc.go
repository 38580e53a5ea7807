// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity parses and normalizes the identifiers used across
// the AT Protocol surface: handles, DIDs, at:// record URIs, and the
// post references users paste from bsky.app.
//
// Everything here is pure string manipulation. Resolution of handles
// to DIDs requires the network and lives in lib/atproto.
package identity
