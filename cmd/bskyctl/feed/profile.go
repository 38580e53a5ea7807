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
	"github.com/bskyctl/bskyctl/lib/identity"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// ProfileCommand shows an actor's profile, defaulting to the session
// account.
func ProfileCommand() *cli.Command {
	var app cli.App

	return &cli.Command{
		Name:    "profile",
		Summary: "Show an actor's profile",
		Usage:   "bskyctl profile [ACTOR] [flags]",
		Examples: []cli.Example{
			{
				Description: "Show your own profile",
				Command:     "bskyctl profile",
			},
			{
				Description: "Bare names get .bsky.social appended",
				Command:     "bskyctl profile alice",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("profile", pflag.ContinueOnError)
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("expected at most one argument (the actor), got %d", len(args))
			}

			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			actor := conn.Client.Session().Handle
			if len(args) == 1 {
				actor = identity.NormalizeHandle(args[0])
			}

			profile, err := ratelimit.ReadResult(ctx, conn.Caller, func() (atproto.Profile, error) {
				return conn.Client.GetProfile(ctx, actor)
			})
			if atproto.IsNotFound(err) {
				fmt.Fprintf(os.Stderr, "Profile not found: %s\n", actor)
				return &cli.ExitError{Code: 1}
			}
			if err != nil {
				return err
			}
			newRenderer(os.Stdout).profile(profile)
			return nil
		},
	}
}
