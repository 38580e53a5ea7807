// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package feed implements the one-shot remote commands: timeline,
// post, quote, engagement (like/repost/delete), profile, search, and
// notifications.
package feed

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/identity"
)

// renderer writes styled post listings. Styling degrades to plain text
// automatically when the writer is not a terminal, and NO_COLOR is
// honored.
type renderer struct {
	out    io.Writer
	author lipgloss.Style
	faint  lipgloss.Style
}

func newRenderer(out io.Writer) *renderer {
	base := lipgloss.NewRenderer(out)
	if termenv.EnvNoColor() {
		base.SetColorProfile(termenv.Ascii)
	}
	return &renderer{
		out:    out,
		author: base.NewStyle().Bold(true),
		faint:  base.NewStyle().Faint(true),
	}
}

// post writes one full timeline entry: author and time, text, counts,
// and the public URL.
func (r *renderer) post(post atproto.Post) {
	fmt.Fprintf(r.out, "%s · %s\n",
		r.author.Render("@"+post.Author.Handle),
		r.faint.Render(formatTime(post.Record.CreatedAt)))
	fmt.Fprintf(r.out, "  %s\n", cleanText(post.Record.Text, 200))
	fmt.Fprintf(r.out, "  ♥ %d  ⇄ %d  ↩ %d\n", post.LikeCount, post.RepostCount, post.ReplyCount)
	fmt.Fprintf(r.out, "  %s\n\n", r.faint.Render(identity.PostURL(post.Author.Handle, postRKey(post.URI))))
}

// searchResult writes the compact two-line form used by search.
func (r *renderer) searchResult(post atproto.Post) {
	fmt.Fprintf(r.out, "%s: %s\n",
		r.author.Render("@"+post.Author.Handle),
		cleanText(post.Record.Text, 150))
	fmt.Fprintf(r.out, "  ♥ %d  %s\n\n",
		post.LikeCount,
		r.faint.Render(identity.PostURL(post.Author.Handle, postRKey(post.URI))))
}

// notification writes one reason-specific notification line.
func (r *renderer) notification(notification atproto.Notification) {
	author := r.author.Render("@" + notification.Author.Handle)
	when := r.faint.Render(formatTime(notification.IndexedAt))

	switch notification.Reason {
	case "like":
		fmt.Fprintf(r.out, "♥ %s liked your post · %s\n", author, when)
	case "repost":
		fmt.Fprintf(r.out, "⇄ %s reposted · %s\n", author, when)
	case "follow":
		fmt.Fprintf(r.out, "+ %s followed you · %s\n", author, when)
	case "reply":
		fmt.Fprintf(r.out, "↩ %s replied · %s\n", author, when)
	case "mention":
		fmt.Fprintf(r.out, "@ %s mentioned you · %s\n", author, when)
	case "quote":
		fmt.Fprintf(r.out, "❝ %s quoted you · %s\n", author, when)
	default:
		fmt.Fprintf(r.out, "• %s from %s · %s\n", notification.Reason, author, when)
	}
}

// profile writes the styled field list for an actor.
func (r *renderer) profile(profile atproto.Profile) {
	fmt.Fprintf(r.out, "%s\n", r.author.Render("@"+profile.Handle))
	fmt.Fprintf(r.out, "  Name: %s\n", orNone(profile.DisplayName))
	fmt.Fprintf(r.out, "  Bio: %s\n", orNone(cleanText(profile.Description, 0)))
	fmt.Fprintf(r.out, "  Followers: %d\n", profile.FollowersCount)
	fmt.Fprintf(r.out, "  Following: %d\n", profile.FollowsCount)
	fmt.Fprintf(r.out, "  Posts: %d\n", profile.PostsCount)
	fmt.Fprintf(r.out, "  DID: %s\n", profile.DID)
}

func orNone(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}

// cleanText flattens remote text to one terminal-safe line: escape
// sequences are stripped, whitespace runs collapse to single spaces,
// and the result is cut at limit runes (0 means no limit).
func cleanText(text string, limit int) string {
	text = strings.Join(strings.Fields(ansi.Strip(text)), " ")
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// formatTime renders a server timestamp as "Jan 02 15:04". Anything
// that fails to parse is shown raw, cut to the date-and-minutes prefix
// of the ISO form.
func formatTime(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if len(value) > 16 {
			return value[:16]
		}
		return value
	}
	return parsed.Format("Jan 02 15:04")
}

// postRKey extracts the record key from a post's at:// URI.
func postRKey(uri string) string {
	if parsed, err := identity.ParseATURI(uri); err == nil {
		return parsed.RKey
	}
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
