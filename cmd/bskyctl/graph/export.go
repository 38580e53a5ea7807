// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package graph implements the follow-graph utilities, currently just
// the export of an actor's followers and follows to an actor-list
// file.
package graph

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/actorlist"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/identity"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// Command is the "graph" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "graph",
		Summary: "Follow-graph utilities",
		Subcommands: []*cli.Command{
			exportCommand(),
		},
	}
}

func exportCommand() *cli.Command {
	var (
		app           cli.App
		out           string
		only          string
		format        string
		limit         int
		progressEvery int
	)
	return &cli.Command{
		Name:    "export",
		Summary: "Export an actor's followers and follows to a file",
		Description: `Export an actor's follow graph to a text file: a commented header,
then [followers] and [follows] sections with one actor per line. Strip
the section you want into its own file to feed 'bskyctl follow --list'
or 'bskyctl unfollow --list'.`,
		Usage: "bskyctl graph export [flags] <actor>",
		Examples: []cli.Example{
			{
				Description: "Export both sides of an actor's graph",
				Command:     "bskyctl graph export alice.bsky.social --out graph.txt",
			},
			{
				Description: "Export only the followers",
				Command:     "bskyctl graph export alice.bsky.social --out followers.txt --only followers",
			},
			{
				Description: "Export handles and DIDs, tab separated",
				Command:     "bskyctl graph export did:plc:abc123 --out graph.txt --format handle+did",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
			flagSet.StringVar(&out, "out", "", "output file (required)")
			flagSet.StringVar(&only, "only", "both", "which side to export: followers, follows, or both")
			flagSet.StringVar(&format, "format", "handle", "line format: handle, did, or handle+did")
			flagSet.IntVar(&limit, "limit", 100, "page size per request (server max 100)")
			flagSet.IntVar(&progressEvery, "progress-every", 100, "print progress every N actors (0 disables)")
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the actor), got %d", len(args))
			}
			actor := identity.NormalizeHandle(strings.TrimSpace(args[0]))
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if only != "followers" && only != "follows" && only != "both" {
				return fmt.Errorf("--only must be one of: followers, follows, both")
			}
			if format != "handle" && format != "did" && format != "handle+did" {
				return fmt.Errorf("--format must be one of: handle, did, handle+did")
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be > 0")
			}

			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}

			var followers, follows []string
			if only == "followers" || only == "both" {
				fmt.Printf("Exporting followers for %s ...\n", actor)
				followers, err = collectPaged(ctx, conn.Caller,
					conn.Client.Followers(actor, limit), format, "followers", progressEvery)
				if err != nil {
					return fail("Export", err)
				}
			}
			if only == "follows" || only == "both" {
				fmt.Printf("Exporting follows for %s ...\n", actor)
				follows, err = collectPaged(ctx, conn.Caller,
					conn.Client.Follows(actor, limit), format, "follows", progressEvery)
				if err != nil {
					return fail("Export", err)
				}
			}

			lines := exportLines(actor, format, time.Now().UTC(), only, followers, follows)
			if err := actorlist.WriteAtomic(out, lines); err != nil {
				return fail("Export", err)
			}

			parts := []string{"Done."}
			if only == "followers" || only == "both" {
				parts = append(parts, fmt.Sprintf("followers=%d", len(followers)))
			}
			if only == "follows" || only == "both" {
				parts = append(parts, fmt.Sprintf("follows=%d", len(follows)))
			}
			parts = append(parts, "out="+out)
			fmt.Println(strings.Join(parts, " "))
			return nil
		},
	}
}

func fail(verb string, err error) error {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", verb, err)
	return &cli.ExitError{Code: 1}
}

// collectPaged drains a follower/follows iterator through the read
// policy, formatting and deduplicating as it goes. Pages are safe to
// retry on 429 because the iterator advances its cursor only on
// success.
func collectPaged(ctx context.Context, caller *ratelimit.Caller, pages *atproto.PageIterator[atproto.Author], format, label string, progressEvery int) ([]string, error) {
	var lines []string
	seen := make(map[string]bool)
	for {
		page, err := ratelimit.ReadResult(ctx, caller, func() ([]atproto.Author, error) {
			return pages.Next(ctx)
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return lines, nil
		}
		for _, author := range page {
			line := formatActor(author, format)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			lines = append(lines, line)
			if progressEvery > 0 && len(lines)%progressEvery == 0 {
				fmt.Printf("%s: %d ...\n", label, len(lines))
			}
		}
	}
}

// formatActor renders one graph entry. Accounts can momentarily lack a
// handle (or surface the invalid placeholder), so each mode falls back
// to the identifier that is present.
func formatActor(author atproto.Author, format string) string {
	handle := author.Handle
	if handle == "handle.invalid" {
		handle = ""
	}
	switch format {
	case "did":
		if author.DID != "" {
			return author.DID
		}
		return handle
	case "handle+did":
		switch {
		case handle != "" && author.DID != "":
			return handle + "\t" + author.DID
		case handle != "":
			return handle
		default:
			return author.DID
		}
	default:
		if handle != "" {
			return handle
		}
		return author.DID
	}
}

// exportLines lays out the output file: a comment header, then the
// requested sections under bare [followers] / [follows] markers.
func exportLines(actor, format string, exportedAt time.Time, only string, followers, follows []string) []string {
	lines := []string{
		"# bskyctl graph export",
		"# actor: " + actor,
		"# exportedAt: " + exportedAt.Format(time.RFC3339),
		"# format: " + format,
		"",
	}
	if only == "followers" || only == "both" {
		lines = append(lines, "[followers]")
		lines = append(lines, followers...)
		lines = append(lines, "")
	}
	if only == "follows" || only == "both" {
		lines = append(lines, "[follows]")
		lines = append(lines, follows...)
		lines = append(lines, "")
	}
	return lines
}
