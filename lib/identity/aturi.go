// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"fmt"
	"strings"
)

// Record collections this tool reads and writes.
const (
	CollectionPost   = "app.bsky.feed.post"
	CollectionLike   = "app.bsky.feed.like"
	CollectionRepost = "app.bsky.feed.repost"
	CollectionFollow = "app.bsky.graph.follow"
)

// ATURI identifies a record in an AT Protocol repository, in the form
// "at://<authority>/<collection>/<rkey>". The authority is a DID (or,
// rarely, an unresolved handle), the collection is the record type
// NSID, and the rkey is the record key within that collection.
//
// ATURI is an immutable value type. The zero value is not valid; use
// IsZero to check.
type ATURI struct {
	Authority  string
	Collection string
	RKey       string
}

// ParseATURI validates and splits a raw "at://" URI. Returns an error
// if the scheme is wrong or any of the three path components is
// missing or empty.
func ParseATURI(raw string) (ATURI, error) {
	rest, ok := strings.CutPrefix(raw, "at://")
	if !ok {
		return ATURI{}, fmt.Errorf("not an at:// URI: %q", raw)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ATURI{}, fmt.Errorf("malformed at:// URI: %q", raw)
	}
	return ATURI{Authority: parts[0], Collection: parts[1], RKey: parts[2]}, nil
}

// String returns the full "at://" URI.
func (u ATURI) String() string {
	return "at://" + u.Authority + "/" + u.Collection + "/" + u.RKey
}

// IsZero reports whether the ATURI is the zero value (uninitialized).
func (u ATURI) IsZero() bool {
	return u == ATURI{}
}

// PostURI builds the at:// URI for a post record in the given
// repository.
func PostURI(authority, rkey string) string {
	return ATURI{Authority: authority, Collection: CollectionPost, RKey: rkey}.String()
}

// PostURL builds the public bsky.app URL for a post.
func PostURL(actor, rkey string) string {
	return "https://bsky.app/profile/" + actor + "/post/" + rkey
}
