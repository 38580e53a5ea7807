// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/identity"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// fail prints the one-line failure these commands promise and converts
// the error into a bare exit code, since the output is already written.
func fail(verb string, err error) error {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", verb, err)
	return &cli.ExitError{Code: 1}
}

// resolvedPost is a post reference resolved against the server: the
// canonical at:// URI and CID, plus the public bsky.app URL when the
// reference carried one.
type resolvedPost struct {
	URI       string
	CID       string
	PublicURL string
}

// target is what result lines show: the public URL when known,
// otherwise the at:// URI.
func (p resolvedPost) target() string {
	if p.PublicURL != "" {
		return p.PublicURL
	}
	return p.URI
}

// resolvePostRef turns a bsky.app URL or at:// URI into a hydrated
// post reference. URL references resolve the author handle to a DID
// first; both forms are then fetched so the CID is the server's
// current one.
func resolvePostRef(ctx context.Context, conn *cli.Conn, raw string) (resolvedPost, error) {
	ref, err := identity.ParsePostRef(raw)
	if err != nil {
		return resolvedPost{}, err
	}

	uri := ref.URI
	publicURL := ""
	if uri == "" {
		did, err := ratelimit.ReadResult(ctx, conn.Caller, func() (string, error) {
			return conn.Client.ResolveHandle(ctx, ref.Actor)
		})
		if err != nil {
			return resolvedPost{}, err
		}
		uri = identity.PostURI(did, ref.RKey)
		publicURL = identity.PostURL(ref.Actor, ref.RKey)
	}

	posts, err := ratelimit.ReadResult(ctx, conn.Caller, func() ([]atproto.Post, error) {
		return conn.Client.GetPosts(ctx, []string{uri})
	})
	if err != nil {
		return resolvedPost{}, err
	}
	if len(posts) == 0 {
		if publicURL != "" {
			return resolvedPost{}, errors.New("could not resolve post. Tip: paste the ORIGINAL post URL (author handle + post id)")
		}
		return resolvedPost{}, errors.New("could not resolve post")
	}
	return resolvedPost{URI: posts[0].URI, CID: posts[0].CID, PublicURL: publicURL}, nil
}

// viewerRefs returns the session account's like and repost record URIs
// for a post, empty when the engagement does not exist.
func viewerRefs(ctx context.Context, conn *cli.Conn, uri string) (likeURI, repostURI string, err error) {
	posts, err := ratelimit.ReadResult(ctx, conn.Caller, func() ([]atproto.Post, error) {
		return conn.Client.GetPosts(ctx, []string{uri})
	})
	if err != nil {
		return "", "", err
	}
	if len(posts) == 0 || posts[0].Viewer == nil {
		return "", "", nil
	}
	return posts[0].Viewer.Like, posts[0].Viewer.Repost, nil
}

// engagementFlags is the shared flag set of the five engagement
// commands, which take only the common remote flags.
func engagementFlags(name string, app *cli.App) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
		app.AddFlags(flagSet)
		return flagSet
	}
}

// LikeCommand likes a post.
func LikeCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "like",
		Aliases: []string{"l"},
		Summary: "Like a post",
		Usage:   "bskyctl like POST [flags]",
		Flags:   engagementFlags("like", &app),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the post reference), got %d", len(args))
			}
			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			resolved, err := resolvePostRef(ctx, conn, args[0])
			if err != nil {
				return fail("Like", err)
			}
			_, err = ratelimit.WriteResult(ctx, conn.Caller, func() (atproto.RecordRef, error) {
				return conn.Client.Like(ctx, atproto.StrongRef{URI: resolved.URI, CID: resolved.CID})
			})
			if err != nil {
				return fail("Like", err)
			}
			fmt.Printf("Liked: %s\n", resolved.target())
			return nil
		},
	}
}

// UnlikeCommand removes the session account's like from a post.
func UnlikeCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "unlike",
		Aliases: []string{"ul"},
		Summary: "Remove your like from a post",
		Usage:   "bskyctl unlike POST [flags]",
		Flags:   engagementFlags("unlike", &app),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the post reference), got %d", len(args))
			}
			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			resolved, err := resolvePostRef(ctx, conn, args[0])
			if err != nil {
				return fail("Unlike", err)
			}
			likeURI, _, err := viewerRefs(ctx, conn, resolved.URI)
			if err != nil {
				return fail("Unlike", err)
			}
			if likeURI == "" {
				fmt.Println("Not liked (nothing to undo).")
				return nil
			}
			if err := conn.Caller.Write(ctx, func() error {
				return conn.Client.Unlike(ctx, likeURI)
			}); err != nil {
				return fail("Unlike", err)
			}
			fmt.Printf("Unliked: %s\n", resolved.target())
			return nil
		},
	}
}

// RepostCommand reposts a post.
func RepostCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "repost",
		Aliases: []string{"rp"},
		Summary: "Repost a post",
		Usage:   "bskyctl repost POST [flags]",
		Flags:   engagementFlags("repost", &app),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the post reference), got %d", len(args))
			}
			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			resolved, err := resolvePostRef(ctx, conn, args[0])
			if err != nil {
				return fail("Repost", err)
			}
			_, err = ratelimit.WriteResult(ctx, conn.Caller, func() (atproto.RecordRef, error) {
				return conn.Client.Repost(ctx, atproto.StrongRef{URI: resolved.URI, CID: resolved.CID})
			})
			if err != nil {
				return fail("Repost", err)
			}
			fmt.Printf("Reposted: %s\n", resolved.target())
			return nil
		},
	}
}

// UnrepostCommand removes the session account's repost of a post.
func UnrepostCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "unrepost",
		Aliases: []string{"urp"},
		Summary: "Remove your repost of a post",
		Usage:   "bskyctl unrepost POST [flags]",
		Flags:   engagementFlags("unrepost", &app),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the post reference), got %d", len(args))
			}
			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			resolved, err := resolvePostRef(ctx, conn, args[0])
			if err != nil {
				return fail("Unrepost", err)
			}
			_, repostURI, err := viewerRefs(ctx, conn, resolved.URI)
			if err != nil {
				return fail("Unrepost", err)
			}
			if repostURI == "" {
				fmt.Println("Not reposted (nothing to undo).")
				return nil
			}
			if err := conn.Caller.Write(ctx, func() error {
				return conn.Client.Unrepost(ctx, repostURI)
			}); err != nil {
				return fail("Unrepost", err)
			}
			fmt.Printf("Unreposted: %s\n", resolved.target())
			return nil
		},
	}
}

// deleteRKey extracts the record key from whatever the user pasted: a
// bare rkey, a bsky.app URL, or an at:// URI.
func deleteRKey(ref string) string {
	ref = strings.TrimSpace(ref)
	if parsed, err := identity.ParseATURI(ref); err == nil {
		return parsed.RKey
	}
	if parsed, err := identity.ParsePostRef(ref); err == nil && parsed.RKey != "" {
		return parsed.RKey
	}
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// DeleteCommand deletes one of the session account's own posts.
func DeleteCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"del", "rm"},
		Summary: "Delete one of your posts",
		Description: `Delete one of your own posts. Accepts a bare record key, a bsky.app
URL, or an at:// URI; the record is always deleted from your own
repository.`,
		Usage: "bskyctl delete POST [flags]",
		Flags: engagementFlags("delete", &app),
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the post reference), got %d", len(args))
			}
			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			rkey := deleteRKey(args[0])
			uri := identity.PostURI(conn.Client.Session().DID, rkey)
			if err := conn.Caller.Write(ctx, func() error {
				return conn.Client.DeletePost(ctx, uri)
			}); err != nil {
				return fail("Delete", err)
			}
			fmt.Printf("Deleted post: %s\n", rkey)
			return nil
		},
	}
}
