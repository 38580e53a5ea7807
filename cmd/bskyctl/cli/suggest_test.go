// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition (counted as 2 edits)
		{"kitten", "sitting", 3},
		{"timeline", "timelien", 2},
		{"profile", "profil", 1},
		{"follow", "folow", 1},
		{"unfollow", "unfolow", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"abc", "abd"},
		{"hello", "helo"},
		{"follow", "folow"},
	}

	for _, pair := range pairs {
		forward := levenshtein(pair[0], pair[1])
		reverse := levenshtein(pair[1], pair[0])
		if forward != reverse {
			t.Errorf("levenshtein(%q, %q) = %d, but reverse = %d",
				pair[0], pair[1], forward, reverse)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "timeline", Aliases: []string{"tl", "home"}},
		{Name: "profile"},
		{Name: "version"},
		{Name: "search", Aliases: []string{"s"}},
		{Name: "notifications", Aliases: []string{"notif", "n"}},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"timelien", "timeline"}, // transposition
		{"profil", "profile"},    // missing letter
		{"profilee", "profile"},  // extra letter
		{"vrsion", "version"},    // missing letter
		{"serach", "search"},     // transposition
		{"hme", "home"},          // alias typo
		{"notfi", "notif"},       // alias typo
		{"zzzzzzzzz", ""},        // nothing close
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got := suggestCommand(test.input, commands)
			if got != test.want {
				t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.String("list", "", "")
		flagSet.String("out-failed", "", "")
		flagSet.Float64("min-delay", 2.2, "")
		flagSet.Bool("dry-run", false, "")
		flagSet.Bool("inplace", false, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "close typo with double dash",
			args: []string{"--dryrun"},
			want: "--dry-run",
		},
		{
			name: "close typo with single dash",
			args: []string{"-dryrun"},
			want: "--dry-run",
		},
		{
			name: "inplace typo",
			args: []string{"--in-place"},
			want: "--inplace",
		},
		{
			name: "sink typo",
			args: []string{"--out-faild"},
			want: "--out-failed",
		},
		{
			name: "nothing close",
			args: []string{"--zzzzzzzzz"},
			want: "",
		},
		{
			name: "no flags",
			args: []string{"alice.bsky.social"},
			want: "",
		},
		{
			name: "flag with equals",
			args: []string{"--min-dealy=3.5"},
			want: "--min-delay",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := suggestFlag(test.args, makeFlagSet())
			if got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
