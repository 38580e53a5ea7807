// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package social implements the bulk follow and unfollow commands:
// resumable batch runs over actor lists, paced and checkpointed by the
// batch engine.
package social

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/actorlist"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/batch"
)

// fail prints the one-line failure these commands promise and converts
// the error into a bare exit code.
func fail(verb string, err error) error {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", verb, err)
	return &cli.ExitError{Code: 1}
}

// bulkOptions carries the flag set shared by follow and unfollow.
type bulkOptions struct {
	app cli.App

	list         string
	minDelay     float64
	maxDelay     float64
	buffer       float64
	max          int
	outDone      string
	outSkipped   string
	outFailed    string
	outRemaining string
	inplace      bool
	rewriteInput bool
	dryRun       bool
}

// addFlags registers the bulk flag set. The "done" sink flag is named
// per verb (--out-followed, --out-unfollowed), everything else is
// shared.
func (o *bulkOptions) addFlags(flagSet *pflag.FlagSet, doneFlag, doneHelp string) {
	flagSet.StringVar(&o.list, "list", "", "file with one actor per line (blank lines and # comments ignored)")
	flagSet.Float64Var(&o.minDelay, "min-delay", 2.2, "minimum pause between actors, in seconds")
	flagSet.Float64Var(&o.maxDelay, "max-delay", 3.6, "maximum pause between actors, in seconds")
	flagSet.Float64Var(&o.buffer, "buffer", 0.1, "fractional padding added to every pause")
	flagSet.IntVar(&o.max, "max", 0, "process at most this many list entries (0 means all)")
	flagSet.StringVar(&o.outDone, doneFlag, "", doneHelp)
	flagSet.StringVar(&o.outSkipped, "out-skipped", "", "append skipped actors to this file")
	flagSet.StringVar(&o.outFailed, "out-failed", "", "append failed actors to this file")
	flagSet.StringVar(&o.outRemaining, "out-remaining", "", "rewrite the remaining queue to this file after every actor")
	flagSet.BoolVar(&o.inplace, "inplace", false, "rewrite --list in place to the remaining queue after every actor")
	flagSet.BoolVar(&o.rewriteInput, "rewrite-input", false, "after the run, rewrite --list to just the failed actors")
	flagSet.BoolVar(&o.dryRun, "dry-run", false, "print what would happen without calling the server")
	o.app.AddFlags(flagSet)
}

// loadActors gathers the run's input: the --list file or the single
// positional actor. --max truncates the raw list before normalization
// and dedup, matching how a capped rerun over the same file behaves.
func (o *bulkOptions) loadActors(args []string) ([]string, error) {
	var raw []string
	switch {
	case o.list != "":
		lines, err := actorlist.Read(o.list)
		if err != nil {
			return nil, err
		}
		raw = lines
	case len(args) > 0 && args[0] != "":
		raw = []string{args[0]}
	default:
		return nil, errors.New("missing actor. Provide a handle/DID or use --list <file>")
	}
	if o.max > 0 && len(raw) > o.max {
		raw = raw[:o.max]
	}
	return actorlist.Prepare(raw), nil
}

// batchConfig assembles the engine configuration for this run.
func (o *bulkOptions) batchConfig(conn *cli.Conn, labels [4]string) batch.Config {
	inplacePath := ""
	if o.inplace && o.list != "" {
		inplacePath = o.list
	}
	return batch.Config{
		RetryOn:       atproto.IsRateLimited,
		DoneLabel:     labels[0],
		SkipLabel:     labels[1],
		FailLabel:     labels[2],
		DryRunLabel:   labels[3],
		MinDelay:      o.minDelay,
		MaxDelay:      o.maxDelay,
		Buffer:        o.buffer,
		DryRun:        o.dryRun,
		DonePath:      o.outDone,
		SkippedPath:   o.outSkipped,
		FailedPath:    o.outFailed,
		RemainingPath: o.outRemaining,
		InPlacePath:   inplacePath,
		Logger:        conn.Logger,
	}
}

// finish applies the end-of-run --rewrite-input semantics: the list
// file is rewritten to just the failures so a rerun targets what did
// not work. In-place mode already owns the list file, so the flag is
// ignored with a notice.
func (o *bulkOptions) finish(result batch.Result) error {
	switch {
	case o.rewriteInput && o.list != "" && !o.inplace:
		if err := actorlist.WriteAtomic(o.list, result.Failed); err != nil {
			return err
		}
	case o.rewriteInput && o.inplace:
		fmt.Fprintln(os.Stderr, "Note: --rewrite-input ignored when --inplace is set.")
	}
	return nil
}

// interrupted reports whether a batch error is a context cancellation,
// which the engine has already announced and checkpointed.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
