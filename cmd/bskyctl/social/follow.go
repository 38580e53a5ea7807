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
	"github.com/bskyctl/bskyctl/lib/identity"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// FollowCommand follows one actor or a whole list of them.
func FollowCommand() *cli.Command {
	options := &bulkOptions{}
	return &cli.Command{
		Name:    "follow",
		Aliases: []string{"f"},
		Summary: "Follow an actor, or a list of actors",
		Description: `Follow a single actor, or every actor in a --list file.

List runs pace themselves with a random pause between actors, retry
rate-limited actors in place after a long cooldown, and checkpoint the
remaining queue so an interrupted run can resume from its output
files. Already-followed actors count as skipped, not failed.`,
		Usage: "bskyctl follow [flags] <actor> | --list <file>",
		Examples: []cli.Example{
			{
				Description: "Follow a single actor",
				Command:     "bskyctl follow alice.bsky.social",
			},
			{
				Description: "Work through a list, recording outcomes for a rerun",
				Command:     "bskyctl follow --list targets.txt --out-followed done.txt --out-failed retry.txt",
			},
			{
				Description: "Follow the first 50 entries, shrinking the list as it goes",
				Command:     "bskyctl follow --list targets.txt --inplace --max 50",
			},
			{
				Description: "Preview a run without touching the server",
				Command:     "bskyctl follow --list targets.txt --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("follow", pflag.ContinueOnError)
			options.addFlags(flagSet, "out-followed", "append successfully followed actors to this file")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			actors, err := options.loadActors(args)
			if err != nil {
				return fail("Follow", err)
			}
			conn, err := options.app.Connect(ctx)
			if err != nil {
				return err
			}

			config := options.batchConfig(conn, [4]string{
				"Followed", "Already following", "Follow failed", "DRY RUN follow",
			})
			config.Action = followAction(conn.Client, conn.Limiter)
			config.SkipOn = atproto.IsConflict

			result, err := batch.Run(ctx, actors, config)
			switch {
			case interrupted(err):
				return &cli.ExitError{Code: 1}
			case err != nil:
				return fail("Follow", err)
			}
			if err := options.finish(result); err != nil {
				return fail("Follow", err)
			}
			fmt.Printf("Done. followed=%d skipped=%d failed=%d\n",
				len(result.OK), len(result.Skipped), len(result.Failed))
			return nil
		},
	}
}

// followAction builds the per-actor callback: resolve the handle to a
// DID (cached for the run, so a retried actor does not resolve twice)
// and create the follow record. Every remote call pays one limiter
// token, the same price interactive commands pay.
func followAction(client *atproto.Client, limiter ratelimit.Limiter) func(context.Context, string) (batch.Status, error) {
	didCache := make(map[string]string)
	return func(ctx context.Context, actor string) (batch.Status, error) {
		did := actor
		if !identity.IsDID(actor) {
			cached, ok := didCache[actor]
			if !ok {
				if err := limiter.Acquire(ctx, 1.0); err != nil {
					return 0, err
				}
				resolved, err := client.ResolveHandle(ctx, actor)
				if err != nil {
					return 0, err
				}
				didCache[actor] = resolved
				cached = resolved
			}
			did = cached
		}
		if err := limiter.Acquire(ctx, 1.0); err != nil {
			return 0, err
		}
		if _, err := client.Follow(ctx, did); err != nil {
			return 0, err
		}
		return batch.StatusDone, nil
	}
}
