// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package social

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/batch"
)

func writeList(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadActors_SingleArgument(t *testing.T) {
	options := &bulkOptions{}
	actors, err := options.loadActors([]string{"@alice"})
	if err != nil {
		t.Fatalf("loadActors: %v", err)
	}
	if len(actors) != 1 || actors[0] != "alice.bsky.social" {
		t.Errorf("actors = %v, want normalized single actor", actors)
	}
}

func TestLoadActors_List(t *testing.T) {
	options := &bulkOptions{
		list: writeList(t,
			"# targets",
			"alice.bsky.social",
			"",
			"bob.bsky.social  # friend of alice",
			"@carol",
		),
	}
	actors, err := options.loadActors(nil)
	if err != nil {
		t.Fatalf("loadActors: %v", err)
	}
	want := []string{"alice.bsky.social", "bob.bsky.social", "carol.bsky.social"}
	if len(actors) != len(want) {
		t.Fatalf("actors = %v, want %v", actors, want)
	}
	for i := range want {
		if actors[i] != want[i] {
			t.Errorf("actors[%d] = %q, want %q", i, actors[i], want[i])
		}
	}
}

func TestLoadActors_MaxTruncatesBeforeNormalization(t *testing.T) {
	// @alice and alice.bsky.social collapse to one entry during
	// normalization; --max counts raw list entries, so capping at 2
	// keeps only the alice pair and bob never enters the run.
	options := &bulkOptions{
		list: writeList(t, "@alice", "alice.bsky.social", "bob.bsky.social"),
		max:  2,
	}
	actors, err := options.loadActors(nil)
	if err != nil {
		t.Fatalf("loadActors: %v", err)
	}
	if len(actors) != 1 || actors[0] != "alice.bsky.social" {
		t.Errorf("actors = %v, want just the deduplicated alice", actors)
	}
}

func TestLoadActors_Missing(t *testing.T) {
	options := &bulkOptions{}
	_, err := options.loadActors(nil)
	if err == nil || !strings.Contains(err.Error(), "missing actor") {
		t.Errorf("loadActors() error = %v, want missing actor guidance", err)
	}
}

func TestLoadActors_ListNotFound(t *testing.T) {
	options := &bulkOptions{list: filepath.Join(t.TempDir(), "absent.txt")}
	_, err := options.loadActors(nil)
	if err == nil || !strings.Contains(err.Error(), "list file not found") {
		t.Errorf("loadActors() error = %v, want not-found error", err)
	}
}

func TestFinish_RewriteInput(t *testing.T) {
	path := writeList(t, "alice.bsky.social", "bob.bsky.social", "carol.bsky.social")
	options := &bulkOptions{list: path, rewriteInput: true}

	err := options.finish(batch.Result{
		OK:     []string{"alice.bsky.social"},
		Failed: []string{"bob.bsky.social", "carol.bsky.social"},
	})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "bob.bsky.social\ncarol.bsky.social\n"
	if string(data) != want {
		t.Errorf("rewritten list = %q, want just the failures %q", data, want)
	}
}

func TestFinish_RewriteInputIgnoredInPlace(t *testing.T) {
	path := writeList(t, "alice.bsky.social")
	options := &bulkOptions{list: path, rewriteInput: true, inplace: true}

	// In-place mode owns the list file during the run; finish must not
	// clobber the checkpoint with the failure list.
	if err := options.finish(batch.Result{Failed: []string{"bob.bsky.social"}}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "alice.bsky.social\n" {
		t.Errorf("list = %q, want untouched content", data)
	}
}

func TestBatchConfig_InPlaceNeedsList(t *testing.T) {
	conn := &cli.Conn{}

	options := &bulkOptions{inplace: true}
	config := options.batchConfig(conn, [4]string{"a", "b", "c", "d"})
	if config.InPlacePath != "" {
		t.Errorf("InPlacePath = %q, want empty without --list", config.InPlacePath)
	}

	options = &bulkOptions{inplace: true, list: "targets.txt"}
	config = options.batchConfig(conn, [4]string{"a", "b", "c", "d"})
	if config.InPlacePath != "targets.txt" {
		t.Errorf("InPlacePath = %q, want the list path", config.InPlacePath)
	}
}
