// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/clock"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// loginGuidance is printed when a remote command runs with no usable
// profile.
const loginGuidance = `Not logged in. Create a profile first:
  bskyctl login --name <profile> --handle <handle> --password <app-password>
Then select it:
  bskyctl use <profile>
Or run commands with:
  bskyctl <command> --profile <profile>`

// App carries the flags shared by every remote command and builds the
// authenticated connection they run against.
//
// Usage pattern:
//
//	var app cli.App
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        flagSet := pflag.NewFlagSet("timeline", pflag.ContinueOnError)
//	        app.AddFlags(flagSet)
//	        return flagSet
//	    },
//	    Run: func(ctx context.Context, args []string) error {
//	        conn, err := app.Connect(ctx)
//	        ...
//	    },
//	}
type App struct {
	Profile    string
	NoThrottle bool
}

// AddFlags registers --profile and --no-throttle on the given flag set.
func (a *App) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&a.Profile, "profile", "", "profile to use (overrides the active profile)")
	flagSet.BoolVar(&a.NoThrottle, "no-throttle", false, "disable the cross-process request throttle")
}

// Conn is an authenticated connection plus the rate-limit plumbing
// shared by every remote command. Limiter is the raw token bucket for
// code that paces individual requests itself (the bulk engine);
// Caller wraps one-shot calls with throttling and backoff-on-429.
type Conn struct {
	Client  *atproto.Client
	Limiter ratelimit.Limiter
	Caller  *ratelimit.Caller
	Profile string
	Logger  *slog.Logger
}

// Connect resolves the profile, builds the client, and ensures a live
// session: a cached JWT pair is validated (and transparently refreshed)
// against the server, and a dead one falls back to a fresh password
// login. Selection and credential problems print their guidance and
// return an ExitError so the caller just propagates the error.
func (a *App) Connect(ctx context.Context) (*Conn, error) {
	logger := NewCommandLogger()

	store, err := LoadStore()
	if err != nil {
		return nil, err
	}
	name := store.Resolve(a.Profile)
	profile, known := store.Profiles[name]
	if name == "" || !known {
		fmt.Fprintln(os.Stderr, loginGuidance)
		return nil, &ExitError{Code: 1}
	}
	if profile.Handle == "" || profile.AppPassword == "" {
		fmt.Fprintf(os.Stderr, "Profile '%s' is missing credentials. Re-run login for that profile.\n", name)
		return nil, &ExitError{Code: 1}
	}

	client, err := atproto.NewClient(atproto.Config{
		Service: profile.Service,
		Logger:  logger,
		OnSessionChange: func(session atproto.Session) {
			if err := writeSessionCache(name, session); err != nil {
				logger.Warn("persisting session cache", "profile", name, "error", err)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	if cached, ok := readSessionCache(name); ok {
		client.SetSession(cached)
		switch _, err := client.GetSession(ctx); {
		case err == nil:
			return a.newConn(client, name, logger), nil
		case atproto.IsExpiredToken(err) || atproto.IsAuthFailed(err):
			// Both tokens are dead; log in again below.
			client.SetSession(atproto.Session{})
		default:
			return nil, err
		}
	}

	if _, err := client.Login(ctx, profile.Handle, profile.AppPassword); err != nil {
		return nil, fmt.Errorf("logging in profile %q: %w", name, err)
	}
	return a.newConn(client, name, logger), nil
}

func (a *App) newConn(client *atproto.Client, name string, logger *slog.Logger) *Conn {
	var limiter ratelimit.Limiter = ratelimit.Nop()
	if !a.NoThrottle {
		limiter = ratelimit.NewFromEnv(clock.Real(), logger)
	}
	return &Conn{
		Client:  client,
		Limiter: limiter,
		Caller: &ratelimit.Caller{
			Limiter:   limiter,
			Logger:    logger,
			Retryable: atproto.IsRateLimited,
		},
		Profile: name,
		Logger:  logger,
	}
}
