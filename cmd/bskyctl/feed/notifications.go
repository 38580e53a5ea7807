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

// NotificationsCommand lists recent notifications.
func NotificationsCommand() *cli.Command {
	var app cli.App
	var count int

	return &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notif", "n"},
		Summary: "List recent notifications",
		Usage:   "bskyctl notifications [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("notifications", pflag.ContinueOnError)
			flagSet.IntVarP(&count, "count", "n", 20, "number of notifications to show")
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			notifications, err := ratelimit.ReadResult(ctx, conn.Caller, func() ([]atproto.Notification, error) {
				return conn.Client.Notifications(ctx, count)
			})
			if err != nil {
				return err
			}
			render := newRenderer(os.Stdout)
			for _, notification := range notifications {
				render.notification(notification)
			}
			return nil
		},
	}
}
