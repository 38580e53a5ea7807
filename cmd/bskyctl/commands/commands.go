// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete bskyctl command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/cmd/bskyctl/feed"
	graphcmd "github.com/bskyctl/bskyctl/cmd/bskyctl/graph"
	"github.com/bskyctl/bskyctl/cmd/bskyctl/social"
	"github.com/bskyctl/bskyctl/lib/version"
)

// Root builds and returns the complete bskyctl command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "bskyctl",
		Description: `bskyctl: a Bluesky command-line client.

Post, browse, and engage from the terminal, and run resumable bulk
follow/unfollow jobs over actor lists with cross-process rate limiting.`,
		Subcommands: []*cli.Command{
			cli.LoginCommand(),
			cli.AccountsCommand(),
			cli.UseCommand(),
			cli.LogoutCommand(),
			cli.WhoAmICommand(),
			feed.TimelineCommand(),
			feed.PostCommand(),
			feed.QuoteCommand(),
			feed.LikeCommand(),
			feed.UnlikeCommand(),
			feed.RepostCommand(),
			feed.UnrepostCommand(),
			feed.DeleteCommand(),
			feed.ProfileCommand(),
			feed.SearchCommand(),
			feed.NotificationsCommand(),
			social.FollowCommand(),
			social.UnfollowCommand(),
			graphcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					fmt.Printf("bskyctl %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Log in and make the profile active",
				Command:     "bskyctl login --name main --handle alice.bsky.social",
			},
			{
				Description: "Read your timeline",
				Command:     "bskyctl timeline -n 25",
			},
			{
				Description: "Post from the shell",
				Command:     `bskyctl post "hello from bskyctl"`,
			},
			{
				Description: "Like a post by its bsky.app URL",
				Command:     "bskyctl like https://bsky.app/profile/alice.bsky.social/post/3kabc123",
			},
			{
				Description: "Follow everyone in a list, resumably",
				Command:     "bskyctl follow --list targets.txt --out-failed retry.txt",
			},
			{
				Description: "Export an actor's follow graph",
				Command:     "bskyctl graph export alice.bsky.social --out graph.txt",
			},
		},
	}
}
