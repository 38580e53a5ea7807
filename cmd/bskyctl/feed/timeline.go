// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"context"
	"os"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// TimelineCommand shows the home timeline.
func TimelineCommand() *cli.Command {
	var app cli.App
	var count int

	return &cli.Command{
		Name:    "timeline",
		Aliases: []string{"tl", "home"},
		Summary: "Show your home timeline",
		Usage:   "bskyctl timeline [flags]",
		Examples: []cli.Example{
			{
				Description: "Show the 25 most recent posts",
				Command:     "bskyctl timeline -n 25",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("timeline", pflag.ContinueOnError)
			flagSet.IntVarP(&count, "count", "n", 10, "number of posts to show")
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			items, err := ratelimit.ReadResult(ctx, conn.Caller, func() ([]atproto.FeedItem, error) {
				return conn.Client.Timeline(ctx, count)
			})
			if err != nil {
				return err
			}
			render := newRenderer(os.Stdout)
			for _, item := range items {
				render.post(item.Post)
			}
			return nil
		},
	}
}
