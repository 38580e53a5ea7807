// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Profile holds the stored credentials for one account.
type Profile struct {
	Handle      string `json:"handle"`
	AppPassword string `json:"app_password"`
	DID         string `json:"did,omitempty"`
	Service     string `json:"service,omitempty"`
}

// Store is the on-disk profile configuration. Active names the profile
// used when neither the --profile flag nor BSKY_PROFILE selects one.
type Store struct {
	Active   string             `json:"active,omitempty"`
	Profiles map[string]Profile `json:"profiles"`
}

// ConfigPath returns the profile store location: $BSKYCTL_CONFIG if
// set, else $XDG_CONFIG_HOME/bskyctl/config.json, else
// ~/.config/bskyctl/config.json. Empty when no home directory is
// known.
func ConfigPath() string {
	if path := os.Getenv("BSKYCTL_CONFIG"); path != "" {
		return path
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "bskyctl", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bskyctl", "config.json")
}

// LoadStore reads the profile store. A missing file yields an empty
// store. The file may be JSONC (comments and trailing commas are
// stripped before parsing); an unparseable file also yields an empty
// store rather than an error, so a corrupt config never locks the user
// out of re-running login.
func LoadStore() (*Store, error) {
	path := ConfigPath()
	if path == "" {
		return emptyStore(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return emptyStore(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return parseStore(data), nil
}

func emptyStore() *Store {
	return &Store{Profiles: map[string]Profile{}}
}

// parseStore decodes the store, migrating the v1 flat layout (a single
// top-level handle/app_password/did object) to a "default" profile in
// memory. The migrated shape is written back on the next Save.
func parseStore(data []byte) *Store {
	var raw struct {
		Active   string             `json:"active"`
		Profiles map[string]Profile `json:"profiles"`

		// v1 flat fields.
		Handle      string `json:"handle"`
		AppPassword string `json:"app_password"`
		DID         string `json:"did"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return emptyStore()
	}

	if raw.Profiles == nil {
		store := emptyStore()
		if raw.Handle != "" && raw.AppPassword != "" {
			store.Profiles["default"] = Profile{
				Handle:      raw.Handle,
				AppPassword: raw.AppPassword,
				DID:         raw.DID,
			}
			store.Active = raw.Active
			if store.Active == "" {
				store.Active = "default"
			}
		}
		return store
	}

	return &Store{Active: raw.Active, Profiles: raw.Profiles}
}

// Save writes the store atomically: temporary sibling, then rename.
// The file is 0600 and its directory 0700 since it holds app
// passwords.
func (s *Store) Save() error {
	path := ConfigPath()
	if path == "" {
		return errors.New("no home directory for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"
	if err := os.WriteFile(temporaryPath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve picks the profile name to use: the explicit flag value, then
// the BSKY_PROFILE environment variable, then the active profile.
// Empty when none of the three is set.
func (s *Store) Resolve(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("BSKY_PROFILE"); env != "" {
		return env
	}
	return s.Active
}
