// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"fmt"
	"regexp"
	"strings"
)

// Matches the post URL shape regardless of scheme or query string:
// https://bsky.app/profile/<actor>/post/<rkey>
var postURLPattern = regexp.MustCompile(`bsky\.app/profile/([^/]+)/post/([^/?#]+)`)

// PostRef is a post reference parsed from user input. For bsky.app
// URLs, Actor holds the profile segment (a handle or a DID) and RKey
// the record key; the caller still has to resolve Actor to a DID
// before it can build a record URI. For at:// input, URI holds the
// reference verbatim and the other fields are empty.
type PostRef struct {
	URI   string
	Actor string
	RKey  string
}

// ParsePostRef parses a bsky.app post URL or an at:// URI. Anything
// else is an error.
func ParsePostRef(raw string) (PostRef, error) {
	value := strings.TrimSpace(raw)
	if m := postURLPattern.FindStringSubmatch(value); m != nil {
		return PostRef{Actor: m[1], RKey: m[2]}, nil
	}
	if strings.HasPrefix(value, "at://") {
		return PostRef{URI: value}, nil
	}
	return PostRef{}, fmt.Errorf("unsupported post reference (use a bsky.app post URL): %q", raw)
}
