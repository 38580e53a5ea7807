// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// SearchCommand searches posts.
func SearchCommand() *cli.Command {
	var app cli.App
	var count int

	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Summary: "Search posts",
		Usage:   "bskyctl search QUERY [flags]",
		Examples: []cli.Example{
			{
				Description: "Search for posts about Go",
				Command:     `bskyctl search "golang" -n 25`,
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("search", pflag.ContinueOnError)
			flagSet.IntVarP(&count, "count", "n", 10, "number of results to show")
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the query), got %d", len(args))
			}

			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			posts, err := ratelimit.ReadResult(ctx, conn.Caller, func() ([]atproto.Post, error) {
				return conn.Client.SearchPosts(ctx, args[0], count)
			})
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				fmt.Println("No results found.")
				return nil
			}
			render := newRenderer(os.Stdout)
			for _, post := range posts {
				render.searchResult(post)
			}
			return nil
		},
	}
}
