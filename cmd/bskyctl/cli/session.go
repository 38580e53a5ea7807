// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bskyctl/bskyctl/lib/atproto"
)

// sessionCachePath returns where a profile's JWT pair is cached:
// $XDG_CACHE_HOME/bskyctl/session-<profile>.json, falling back to
// ~/.cache. Empty when no home directory is known, which disables the
// cache and makes every command log in with the stored app password.
func sessionCachePath(profile string) string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "bskyctl", "session-"+profile+".json")
}

// readSessionCache loads the cached session for a profile. A missing,
// unreadable, or corrupt cache file reports ok=false; the caller falls
// back to a password login and the next writeSessionCache replaces the
// bad file.
func readSessionCache(profile string) (session atproto.Session, ok bool) {
	path := sessionCachePath(profile)
	if path == "" {
		return atproto.Session{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return atproto.Session{}, false
	}
	if err := json.Unmarshal(data, &session); err != nil {
		return atproto.Session{}, false
	}
	return session, !session.IsZero()
}

// writeSessionCache persists a profile's session tokens, mode 0600.
func writeSessionCache(profile string, session atproto.Session) error {
	path := sessionCachePath(profile)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating session cache directory: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session cache: %w", err)
	}
	return nil
}

// removeSessionCache drops a profile's cached session, if any.
func removeSessionCache(profile string) {
	if path := sessionCachePath(profile); path != "" {
		os.Remove(path)
	}
}
