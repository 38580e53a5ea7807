// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "testing"

func TestParsePostRef(t *testing.T) {
	tests := []struct {
		input   string
		want    PostRef
		wantErr bool
	}{
		// Canonical public URL.
		{
			input: "https://bsky.app/profile/alice.bsky.social/post/3kxyz",
			want:  PostRef{Actor: "alice.bsky.social", RKey: "3kxyz"},
		},
		// DID in the profile segment.
		{
			input: "https://bsky.app/profile/did:plc:abc123/post/3kxyz",
			want:  PostRef{Actor: "did:plc:abc123", RKey: "3kxyz"},
		},
		// Query strings and fragments do not leak into the rkey.
		{
			input: "https://bsky.app/profile/alice.bsky.social/post/3kxyz?ref=share",
			want:  PostRef{Actor: "alice.bsky.social", RKey: "3kxyz"},
		},
		{
			input: "https://bsky.app/profile/alice.bsky.social/post/3kxyz#top",
			want:  PostRef{Actor: "alice.bsky.social", RKey: "3kxyz"},
		},
		// Scheme-less paste still matches.
		{
			input: "bsky.app/profile/alice.bsky.social/post/3kxyz",
			want:  PostRef{Actor: "alice.bsky.social", RKey: "3kxyz"},
		},
		// Surrounding whitespace is tolerated.
		{
			input: "  https://bsky.app/profile/alice.bsky.social/post/3kxyz  ",
			want:  PostRef{Actor: "alice.bsky.social", RKey: "3kxyz"},
		},
		// at:// URIs pass through verbatim.
		{
			input: "at://did:plc:abc123/app.bsky.feed.post/3kxyz",
			want:  PostRef{URI: "at://did:plc:abc123/app.bsky.feed.post/3kxyz"},
		},
		// Everything else is rejected.
		{input: "https://example.com/profile/alice/post/3kxyz", wantErr: true},
		{input: "3kxyz", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, test := range tests {
		got, err := ParsePostRef(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParsePostRef(%q): err=%v, wantErr=%v", test.input, err, test.wantErr)
			continue
		}
		if err == nil && got != test.want {
			t.Errorf("ParsePostRef(%q) = %+v, want %+v", test.input, got, test.want)
		}
	}
}
