// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package actorlist reads and writes plain-text actor list files: one
// handle or DID per line, with blank lines and #-comments ignored.
//
// List files are both user input (the --list flag of the bulk
// commands) and tool output (the checkpoint and outcome files a batch
// run writes), so reads are lenient and rewrites are atomic.
package actorlist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bskyctl/bskyctl/lib/identity"
)

// Read loads an actor list file. Lines are trimmed; blank lines and
// lines starting with '#' are skipped; an inline '#' starts a comment
// running to end of line. Duplicates are dropped, keeping first-seen
// order. A missing file is reported as an error wrapping
// fs.ErrNotExist.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading list file %s: %w", path, err)
	}

	var actors []string
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
			if line == "" {
				continue
			}
		}
		actors = append(actors, line)
	}
	return dedupe(actors), nil
}

// Prepare normalizes raw list entries for a batch run: each entry goes
// through identity.NormalizeHandle, then duplicates are dropped
// keeping first-seen order, so "@alice" and "alice" collapse to one
// entry.
func Prepare(raw []string) []string {
	normalized := make([]string, 0, len(raw))
	for _, entry := range raw {
		normalized = append(normalized, identity.NormalizeHandle(entry))
	}
	return dedupe(normalized)
}

func dedupe(actors []string) []string {
	seen := make(map[string]bool, len(actors))
	unique := actors[:0]
	for _, actor := range actors {
		if seen[actor] {
			continue
		}
		seen[actor] = true
		unique = append(unique, actor)
	}
	return unique
}

// AppendLine appends one line to the file at path, creating parent
// directories as needed. A trailing newline on the line is normalized
// to exactly one.
func AppendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	if _, err := file.WriteString(strings.TrimRight(line, "\n") + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// WriteAtomic replaces the file at path with the given lines. Content
// is written to a temporary sibling, synced, and renamed into place so
// a reader never sees a partial list even if the process dies
// mid-write. An empty list produces an empty file.
func WriteAtomic(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating temporary list file: %w", err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary list file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary list file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary list file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming list file into place: %w", err)
	}
	return nil
}
