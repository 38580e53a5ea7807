// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/identity"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// detectFacets annotates post text with link, tag, and mention facets.
// Mention resolution goes through the read-policy wrapper; a handle
// that fails to resolve is left as plain text.
func detectFacets(ctx context.Context, conn *cli.Conn, text string) []atproto.Facet {
	return atproto.DetectFacets(text, func(handle string) (string, error) {
		return ratelimit.ReadResult(ctx, conn.Caller, func() (string, error) {
			return conn.Client.ResolveHandle(ctx, handle)
		})
	})
}

// PostCommand publishes a post.
func PostCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "post",
		Aliases: []string{"p"},
		Summary: "Publish a post",
		Description: `Publish a post. Links, #hashtags, and @mentions in the text are
annotated with rich-text facets so clients render them as such.`,
		Usage: "bskyctl post TEXT [flags]",
		Examples: []cli.Example{
			{
				Description: "Post with a hashtag and a mention",
				Command:     `bskyctl post "shipping #golang tools with @alice.bsky.social"`,
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("post", pflag.ContinueOnError)
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the post text), got %d", len(args))
			}
			text := args[0]

			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			record := atproto.PostRecord{
				Text:   text,
				Facets: detectFacets(ctx, conn, text),
			}
			ref, err := ratelimit.WriteResult(ctx, conn.Caller, func() (atproto.RecordRef, error) {
				return conn.Client.CreatePost(ctx, record)
			})
			if err != nil {
				return fail("Post", err)
			}
			fmt.Printf("Posted: %s\n", identity.PostURL(conn.Client.Session().Handle, postRKey(ref.URI)))
			return nil
		},
	}
}

// QuoteCommand publishes a post quoting another post.
func QuoteCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "quote",
		Aliases: []string{"cite", "q"},
		Summary: "Quote a post with a comment",
		Usage:   "bskyctl quote POST TEXT [flags]",
		Examples: []cli.Example{
			{
				Description: "Quote a post by its public URL",
				Command:     `bskyctl quote https://bsky.app/profile/alice.bsky.social/post/3kabc "worth reading"`,
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("quote", pflag.ContinueOnError)
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected exactly two arguments (post reference and text), got %d", len(args))
			}

			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			resolved, err := resolvePostRef(ctx, conn, args[0])
			if err != nil {
				return fail("Quote", err)
			}

			text := args[1]
			record := atproto.PostRecord{
				Text:   text,
				Facets: detectFacets(ctx, conn, text),
				Embed: &atproto.Embed{
					Type:   atproto.EmbedRecord,
					Record: &atproto.StrongRef{URI: resolved.URI, CID: resolved.CID},
				},
			}
			ref, err := ratelimit.WriteResult(ctx, conn.Caller, func() (atproto.RecordRef, error) {
				return conn.Client.CreatePost(ctx, record)
			})
			if err != nil {
				return fail("Quote", err)
			}
			fmt.Printf("Quoted: %s\n", identity.PostURL(conn.Client.Session().Handle, postRKey(ref.URI)))
			if resolved.PublicURL != "" {
				fmt.Printf("  ↳ original: %s\n", resolved.PublicURL)
			}
			return nil
		},
	}
}
