// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package social

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/batch"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// UnfollowCommand unfollows one actor or a whole list of them.
func UnfollowCommand() *cli.Command {
	options := &bulkOptions{}
	return &cli.Command{
		Name:    "unfollow",
		Aliases: []string{"uf"},
		Summary: "Unfollow an actor, or a list of actors",
		Description: `Unfollow a single actor, or every actor in a --list file.

List runs pace themselves with a random pause between actors, retry
rate-limited actors in place after a long cooldown, and checkpoint the
remaining queue so an interrupted run can resume from its output
files. Actors the session is not following count as skipped.`,
		Usage: "bskyctl unfollow [flags] <actor> | --list <file>",
		Examples: []cli.Example{
			{
				Description: "Unfollow a single actor",
				Command:     "bskyctl unfollow alice.bsky.social",
			},
			{
				Description: "Work through a list, keeping only the failures for a rerun",
				Command:     "bskyctl unfollow --list purge.txt --out-unfollowed done.txt --rewrite-input",
			},
			{
				Description: "Preview a run without touching the server",
				Command:     "bskyctl unfollow --list purge.txt --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("unfollow", pflag.ContinueOnError)
			options.addFlags(flagSet, "out-unfollowed", "append successfully unfollowed actors to this file")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			actors, err := options.loadActors(args)
			if err != nil {
				return fail("Unfollow", err)
			}
			conn, err := options.app.Connect(ctx)
			if err != nil {
				return err
			}

			config := options.batchConfig(conn, [4]string{
				"Unfollowed", "Not following", "Unfollow failed", "DRY RUN unfollow",
			})
			config.Action = unfollowAction(conn.Client, conn.Limiter)

			result, err := batch.Run(ctx, actors, config)
			switch {
			case interrupted(err):
				return &cli.ExitError{Code: 1}
			case err != nil:
				return fail("Unfollow", err)
			}
			if err := options.finish(result); err != nil {
				return fail("Unfollow", err)
			}
			fmt.Printf("Done. unfollowed=%d skipped=%d failed=%d\n",
				len(result.OK), len(result.Skipped), len(result.Failed))
			return nil
		},
	}
}

// unfollowAction builds the per-actor callback. The profile lookup
// both resolves the actor and reports the viewer's follow record, so
// "not following" is detected without a write. getProfile accepts
// handles and DIDs alike, so there is no separate resolve step.
func unfollowAction(client *atproto.Client, limiter ratelimit.Limiter) func(context.Context, string) (batch.Status, error) {
	return func(ctx context.Context, actor string) (batch.Status, error) {
		if err := limiter.Acquire(ctx, 1.0); err != nil {
			return 0, err
		}
		profile, err := client.GetProfile(ctx, actor)
		if err != nil {
			return 0, err
		}
		if profile.Viewer == nil || profile.Viewer.Following == "" {
			return batch.StatusSkipped, nil
		}
		if err := limiter.Acquire(ctx, 1.0); err != nil {
			return 0, err
		}
		if err := client.Unfollow(ctx, profile.Viewer.Following); err != nil {
			return 0, err
		}
		return batch.StatusDone, nil
	}
}
