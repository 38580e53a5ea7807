// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bskyctl/bskyctl/lib/atproto"
)

// LoginCommand verifies credentials against the PDS and stores them as
// a named profile.
func LoginCommand() *Command {
	var name, handle, password, service string
	var setActive bool

	return &Command{
		Name:    "login",
		Summary: "Add a profile and verify its credentials",
		Description: `Verify an app password against the PDS and save it as a named
profile. The first profile becomes the active one automatically.

Use an app password from Settings > Privacy and Security > App
Passwords, never your main account password.`,
		Usage: "bskyctl login --handle <handle> [--password <app-password>] [flags]",
		Examples: []Example{
			{
				Description: "Log in and name the profile after the handle",
				Command:     "bskyctl login --handle alice.bsky.social --password xxxx-xxxx-xxxx-xxxx",
			},
			{
				Description: "Add a second profile and make it active",
				Command:     "bskyctl login --name work --handle work.example.com --password ... --set-active",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flagSet.StringVar(&name, "name", "", "profile name (defaults to the handle)")
			flagSet.StringVar(&handle, "handle", "", "account handle, e.g. alice.bsky.social")
			flagSet.StringVar(&password, "password", "", "app password (prompted when omitted)")
			flagSet.StringVar(&service, "service", "", "PDS base URL (defaults to https://bsky.social)")
			flagSet.BoolVar(&setActive, "set-active", false, "make this the active profile")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			profileName := strings.TrimSpace(name)
			if profileName == "" {
				profileName = strings.TrimSpace(handle)
			}
			if profileName == "" {
				fmt.Fprintln(os.Stderr, "Missing profile name. Use: bskyctl login --name <profile> ...")
				return &ExitError{Code: 1}
			}
			if handle == "" {
				fmt.Fprintln(os.Stderr, "Missing handle. Use: bskyctl login --handle <handle> [--name <profile>]")
				return &ExitError{Code: 1}
			}
			if password == "" {
				prompted, err := promptPassword()
				if err != nil {
					return err
				}
				password = prompted
			}

			store, err := LoadStore()
			if err != nil {
				return err
			}

			logger := NewCommandLogger()
			client, err := atproto.NewClient(atproto.Config{Service: service, Logger: logger})
			if err != nil {
				return err
			}
			session, err := client.Login(ctx, handle, password)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
				return &ExitError{Code: 1}
			}

			store.Profiles[profileName] = Profile{
				Handle:      handle,
				AppPassword: password,
				DID:         session.DID,
				Service:     service,
			}
			if setActive || store.Active == "" {
				store.Active = profileName
			}
			if err := store.Save(); err != nil {
				return err
			}
			if err := writeSessionCache(profileName, session); err != nil {
				logger.Warn("persisting session cache", "profile", profileName, "error", err)
			}

			activeNote := ""
			if store.Active == profileName {
				activeNote = " (active)"
			}
			fmt.Printf("Logged in profile '%s' as %s (%s)%s\n", profileName, handle, session.DID, activeNote)
			return nil
		},
	}
}

// promptPassword reads the app password interactively with echo
// disabled. Refuses to prompt when stdin is not a terminal so scripted
// callers fail fast instead of hanging.
func promptPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "App password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(password) == 0 {
		return "", fmt.Errorf("empty password")
	}
	return string(password), nil
}

// AccountsCommand lists the stored profiles.
func AccountsCommand() *Command {
	return &Command{
		Name:    "accounts",
		Summary: "List stored profiles",
		Usage:   "bskyctl accounts",
		Run: func(ctx context.Context, args []string) error {
			store, err := LoadStore()
			if err != nil {
				return err
			}
			printAccounts(os.Stdout, store)
			return nil
		},
	}
}

// printAccounts writes one line per profile, the active one starred.
func printAccounts(w io.Writer, store *Store) {
	if len(store.Profiles) == 0 {
		fmt.Fprintln(w, "No profiles configured. Use: bskyctl login --name <profile> --handle <handle> --password <app-password>")
		return
	}
	names := make([]string, 0, len(store.Profiles))
	for name := range store.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		profile := store.Profiles[name]
		star := " "
		if name == store.Active {
			star = "*"
		}
		handle := profile.Handle
		if handle == "" {
			handle = "(missing handle)"
		}
		did := profile.DID
		if did == "" {
			did = "(no did)"
		}
		fmt.Fprintf(w, "%s %s: %s  %s\n", star, name, handle, did)
	}
}

// UseCommand sets the active profile.
func UseCommand() *Command {
	return &Command{
		Name:    "use",
		Summary: "Set the active profile",
		Usage:   "bskyctl use NAME",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the profile name), got %d", len(args))
			}
			name := args[0]

			store, err := LoadStore()
			if err != nil {
				return err
			}
			if _, known := store.Profiles[name]; !known {
				fmt.Fprintf(os.Stderr, "Unknown profile: %s\n", name)
				return &ExitError{Code: 1}
			}
			store.Active = name
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Printf("Active profile set to '%s'\n", name)
			return nil
		},
	}
}

// LogoutCommand removes a profile and its cached session.
func LogoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Remove a profile",
		Usage:   "bskyctl logout NAME",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument (the profile name), got %d", len(args))
			}
			name := args[0]

			store, err := LoadStore()
			if err != nil {
				return err
			}
			if _, known := store.Profiles[name]; !known {
				fmt.Fprintf(os.Stderr, "Unknown profile: %s\n", name)
				return &ExitError{Code: 1}
			}
			delete(store.Profiles, name)
			if store.Active == name {
				store.Active = ""
				remaining := make([]string, 0, len(store.Profiles))
				for profileName := range store.Profiles {
					remaining = append(remaining, profileName)
				}
				slices.Sort(remaining)
				if len(remaining) > 0 {
					store.Active = remaining[0]
				}
			}
			if err := store.Save(); err != nil {
				return err
			}
			removeSessionCache(name)
			fmt.Printf("Removed profile '%s'\n", name)
			return nil
		},
	}
}

// WhoAmICommand shows the resolved profile and its live session
// identity.
func WhoAmICommand() *Command {
	var app App

	return &Command{
		Name:    "whoami",
		Summary: "Show the active profile and its session identity",
		Usage:   "bskyctl whoami [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
			app.AddFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			store, err := LoadStore()
			if err != nil {
				return err
			}
			name := store.Resolve(app.Profile)
			if _, known := store.Profiles[name]; name == "" || !known {
				fmt.Println("Not logged in")
				return nil
			}

			conn, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			info, err := conn.Client.GetSession(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Profile: %s\n", conn.Profile)
			fmt.Printf("Handle: %s\n", info.Handle)
			fmt.Printf("DID: %s\n", info.DID)
			return nil
		},
	}
}
