// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bskyctl/bskyctl/lib/atproto"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{
			name:  "plain text unchanged",
			text:  "hello world",
			limit: 200,
			want:  "hello world",
		},
		{
			name:  "newlines collapse to spaces",
			text:  "line one\nline two\n\nline three",
			limit: 200,
			want:  "line one line two line three",
		},
		{
			name:  "whitespace runs collapse",
			text:  "  spaced \t out  ",
			limit: 200,
			want:  "spaced out",
		},
		{
			name:  "escape sequences stripped",
			text:  "evil \x1b[31mred\x1b[0m text",
			limit: 200,
			want:  "evil red text",
		},
		{
			name:  "truncated at rune limit",
			text:  "abcdefghij",
			limit: 4,
			want:  "abcd",
		},
		{
			name:  "multibyte runes counted as one",
			text:  "ééééé",
			limit: 3,
			want:  "ééé",
		},
		{
			name:  "zero limit means unlimited",
			text:  strings.Repeat("a", 500),
			limit: 0,
			want:  strings.Repeat("a", 500),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := cleanText(test.text, test.limit)
			if got != test.want {
				t.Errorf("cleanText(%q, %d) = %q, want %q", test.text, test.limit, got, test.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"2026-03-01T12:34:56Z", "Mar 01 12:34"},
		{"2026-03-01T12:34:56.789Z", "Mar 01 12:34"},
		{"2026-12-31T23:59:00+02:00", "Dec 31 23:59"},
		// Unparseable values fall back to the raw prefix.
		{"2026-03-01 12:34:56 weird", "2026-03-01 12:34"},
		{"short", "short"},
		{"", ""},
	}

	for _, test := range tests {
		got := formatTime(test.value)
		if got != test.want {
			t.Errorf("formatTime(%q) = %q, want %q", test.value, got, test.want)
		}
	}
}

func TestPostRKey(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"at://did:plc:abc/app.bsky.feed.post/3kxyz", "3kxyz"},
		{"https://bsky.app/profile/alice.bsky.social/post/3kxyz", "3kxyz"},
		{"3kxyz", "3kxyz"},
	}

	for _, test := range tests {
		if got := postRKey(test.uri); got != test.want {
			t.Errorf("postRKey(%q) = %q, want %q", test.uri, got, test.want)
		}
	}
}

func TestRenderer_Post(t *testing.T) {
	var buffer bytes.Buffer
	r := newRenderer(&buffer)

	r.post(atproto.Post{
		URI:    "at://did:plc:alice/app.bsky.feed.post/3kxyz",
		Author: atproto.Author{Handle: "alice.bsky.social"},
		Record: atproto.PostRecord{
			Text:      "hello\nworld",
			CreatedAt: "2026-03-01T12:34:56Z",
		},
		LikeCount:   3,
		RepostCount: 1,
		ReplyCount:  2,
	})

	// A buffer is not a terminal, so the output is plain text.
	want := "@alice.bsky.social · Mar 01 12:34\n" +
		"  hello world\n" +
		"  ♥ 3  ⇄ 1  ↩ 2\n" +
		"  https://bsky.app/profile/alice.bsky.social/post/3kxyz\n\n"
	if buffer.String() != want {
		t.Errorf("post output:\n%q\nwant:\n%q", buffer.String(), want)
	}
}

func TestRenderer_SearchResult(t *testing.T) {
	var buffer bytes.Buffer
	r := newRenderer(&buffer)

	r.searchResult(atproto.Post{
		URI:       "at://did:plc:bob/app.bsky.feed.post/3kaaa",
		Author:    atproto.Author{Handle: "bob.bsky.social"},
		Record:    atproto.PostRecord{Text: "found it"},
		LikeCount: 7,
	})

	want := "@bob.bsky.social: found it\n" +
		"  ♥ 7  https://bsky.app/profile/bob.bsky.social/post/3kaaa\n\n"
	if buffer.String() != want {
		t.Errorf("search output:\n%q\nwant:\n%q", buffer.String(), want)
	}
}

func TestRenderer_Notification(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"like", "♥ @alice.bsky.social liked your post · Mar 01 12:34\n"},
		{"repost", "⇄ @alice.bsky.social reposted · Mar 01 12:34\n"},
		{"follow", "+ @alice.bsky.social followed you · Mar 01 12:34\n"},
		{"reply", "↩ @alice.bsky.social replied · Mar 01 12:34\n"},
		{"mention", "@ @alice.bsky.social mentioned you · Mar 01 12:34\n"},
		{"quote", "❝ @alice.bsky.social quoted you · Mar 01 12:34\n"},
		{"starterpack-joined", "• starterpack-joined from @alice.bsky.social · Mar 01 12:34\n"},
	}

	for _, test := range tests {
		t.Run(test.reason, func(t *testing.T) {
			var buffer bytes.Buffer
			newRenderer(&buffer).notification(atproto.Notification{
				Author:    atproto.Author{Handle: "alice.bsky.social"},
				Reason:    test.reason,
				IndexedAt: "2026-03-01T12:34:56Z",
			})
			if buffer.String() != test.want {
				t.Errorf("notification(%s) = %q, want %q", test.reason, buffer.String(), test.want)
			}
		})
	}
}

func TestRenderer_Profile(t *testing.T) {
	var buffer bytes.Buffer
	r := newRenderer(&buffer)

	r.profile(atproto.Profile{
		DID:            "did:plc:alice",
		Handle:         "alice.bsky.social",
		DisplayName:    "Alice",
		Description:    "writes\nsoftware",
		FollowersCount: 42,
		FollowsCount:   17,
		PostsCount:     128,
	})

	output := buffer.String()
	for _, want := range []string{
		"@alice.bsky.social\n",
		"  Name: Alice\n",
		"  Bio: writes software\n",
		"  Followers: 42\n",
		"  Following: 17\n",
		"  Posts: 128\n",
		"  DID: did:plc:alice\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("profile output missing %q:\n%s", want, output)
		}
	}
}

func TestRenderer_ProfileEmptyFields(t *testing.T) {
	var buffer bytes.Buffer
	newRenderer(&buffer).profile(atproto.Profile{Handle: "bare.bsky.social"})

	output := buffer.String()
	if !strings.Contains(output, "Name: (none)") || !strings.Contains(output, "Bio: (none)") {
		t.Errorf("empty fields should render as (none):\n%s", output)
	}
}
