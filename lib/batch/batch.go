// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/bskyctl/bskyctl/lib/actorlist"
	"github.com/bskyctl/bskyctl/lib/clock"
)

// Status is an action's classification of a successfully handled actor.
type Status int

const (
	// StatusDone means the action changed state (followed, unfollowed).
	StatusDone Status = iota
	// StatusSkipped means the actor was already in the target state.
	StatusSkipped
)

// maxItemRetries caps the in-place re-attempts for a rate-limited item
// before it is classified as failed.
const maxItemRetries = 2

// Config describes one batch run.
type Config struct {
	// Action handles a single actor. Required.
	Action func(ctx context.Context, actor string) (Status, error)

	// SkipOn classifies an action error as "already in target state"
	// (counted as skipped, not failed). Optional.
	SkipOn func(error) bool

	// RetryOn classifies an action error as rate limiting, worth an
	// in-place retry after a long pause. Optional.
	RetryOn func(error) bool

	// Labels for the per-item progress lines.
	DoneLabel   string
	SkipLabel   string
	FailLabel   string
	DryRunLabel string

	// MinDelay and MaxDelay bound the random pacing sleep between
	// items, in seconds. Buffer is a fractional padding applied to
	// every sleep in the run.
	MinDelay float64
	MaxDelay float64
	Buffer   float64

	// DryRun prints what would happen and classifies every item done
	// without calling Action.
	DryRun bool

	// Sink paths. Done, skipped, and failed actors are appended to
	// their sinks as they are classified; the remaining queue is
	// atomically rewritten to RemainingPath (and, for in-place mode,
	// to InPlacePath) after every item. Empty paths disable a sink.
	DonePath      string
	SkippedPath   string
	FailedPath    string
	RemainingPath string
	InPlacePath   string

	// Output receives progress lines (defaults to os.Stdout); Stderr
	// receives failures and rate-limit warnings (defaults to
	// os.Stderr).
	Output io.Writer
	Stderr io.Writer

	// Logger records checkpoint failures during interruption.
	// Defaults to a discarding logger.
	Logger *slog.Logger

	// Clock provides the pacing sleeps. Defaults to clock.Real().
	Clock clock.Clock

	// Rand drives the pacing and backoff jitter. Nil uses the global
	// source.
	Rand *rand.Rand
}

// Result partitions the input actors by outcome. On an uninterrupted
// run every actor lands in exactly one of OK, Skipped, or Failed, and
// Remaining holds the failed actors in failure order. On interruption
// Remaining is the unprocessed queue, head first.
type Result struct {
	OK        []string
	Skipped   []string
	Failed    []string
	Remaining []string
}

type runner struct {
	config Config
	output io.Writer
	stderr io.Writer
	logger *slog.Logger
	clock  clock.Clock

	queue  []string
	total  int
	result Result
}

// Run processes actors (already normalized and deduplicated) through
// config.Action. It returns ctx.Err() when interrupted, an I/O error
// when a sink or checkpoint write fails, and nil otherwise; soft
// per-item action errors are recorded in the result, never returned.
func Run(ctx context.Context, actors []string, config Config) (Result, error) {
	runner := &runner{
		config: config,
		output: config.Output,
		stderr: config.Stderr,
		logger: config.Logger,
		clock:  config.Clock,
		queue:  slices.Clone(actors),
		total:  len(actors),
	}
	if runner.output == nil {
		runner.output = os.Stdout
	}
	if runner.stderr == nil {
		runner.stderr = os.Stderr
	}
	if runner.logger == nil {
		runner.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if runner.clock == nil {
		runner.clock = clock.Real()
	}
	return runner.run(ctx)
}

func (runner *runner) run(ctx context.Context) (Result, error) {
	failed := make(map[string]bool, len(runner.queue))
	processed := 0

	for len(runner.queue) > 0 {
		if ctx.Err() != nil {
			return runner.interrupted(ctx)
		}
		actor := runner.queue[0]
		// Everything from here on has already failed once; the run
		// is complete and the queue is the failure list.
		if failed[actor] {
			break
		}
		index := processed + 1

		if runner.config.DryRun {
			fmt.Fprintf(runner.output, "%s: %s\n", runner.config.DryRunLabel, actor)
			if err := runner.classifyDone(actor, index, true); err != nil {
				return runner.result, err
			}
			processed++
			if err := runner.checkpoint(); err != nil {
				return runner.result, err
			}
			if err := runner.pace(ctx); err != nil {
				return runner.interrupted(ctx)
			}
			continue
		}

		status, err := runner.attempt(ctx, actor)
		if err != nil && ctx.Err() != nil {
			// Cancellation is an interruption, not an item failure.
			return runner.interrupted(ctx)
		}

		var classifyErr error
		switch {
		case err == nil && status == StatusSkipped:
			classifyErr = runner.classifySkipped(actor, index)
		case err == nil:
			classifyErr = runner.classifyDone(actor, index, false)
		case runner.config.SkipOn != nil && runner.config.SkipOn(err):
			classifyErr = runner.classifySkipped(actor, index)
		default:
			failed[actor] = true
			classifyErr = runner.classifyFailed(actor, index, err)
		}
		if classifyErr != nil {
			return runner.result, classifyErr
		}
		processed++

		if err := runner.checkpoint(); err != nil {
			return runner.result, err
		}
		if err := runner.pace(ctx); err != nil {
			return runner.interrupted(ctx)
		}
	}

	runner.result.Remaining = runner.queue
	return runner.result, nil
}

// attempt invokes the action, retrying in place up to maxItemRetries
// times when the error is classified retryable.
func (runner *runner) attempt(ctx context.Context, actor string) (Status, error) {
	retries := 0
	for {
		status, err := runner.config.Action(ctx, actor)
		if err == nil || runner.config.RetryOn == nil || !runner.config.RetryOn(err) || retries >= maxItemRetries {
			return status, err
		}
		retries++

		wait := (20 + runner.sample()*20) * (1 + runner.config.Buffer)
		fmt.Fprintf(runner.stderr, "Rate limited; backing off %.1fs ...\n", wait)
		select {
		case <-runner.clock.After(time.Duration(wait * float64(time.Second))):
		case <-ctx.Done():
			return status, ctx.Err()
		}
	}
}

func (runner *runner) classifyDone(actor string, index int, dryRun bool) error {
	if !dryRun {
		fmt.Fprintf(runner.output, "%s (%d/%d): %s\n", runner.config.DoneLabel, index, runner.total, actor)
	}
	runner.result.OK = append(runner.result.OK, actor)
	runner.queue = runner.queue[1:]
	return runner.appendSink(runner.config.DonePath, actor)
}

func (runner *runner) classifySkipped(actor string, index int) error {
	fmt.Fprintf(runner.output, "%s (%d/%d): %s\n", runner.config.SkipLabel, index, runner.total, actor)
	runner.result.Skipped = append(runner.result.Skipped, actor)
	runner.queue = runner.queue[1:]
	return runner.appendSink(runner.config.SkippedPath, actor)
}

func (runner *runner) classifyFailed(actor string, index int, cause error) error {
	fmt.Fprintf(runner.stderr, "%s (%d/%d): %s :: %v\n", runner.config.FailLabel, index, runner.total, actor, cause)
	runner.result.Failed = append(runner.result.Failed, actor)
	runner.queue = append(runner.queue[1:], actor)
	return runner.appendSink(runner.config.FailedPath, actor)
}

func (runner *runner) appendSink(path, actor string) error {
	if path == "" {
		return nil
	}
	if err := actorlist.AppendLine(path, actor); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}

// checkpoint persists the current queue so an abrupt abort resumes from
// the true remainder.
func (runner *runner) checkpoint() error {
	if runner.config.InPlacePath != "" {
		if err := actorlist.WriteAtomic(runner.config.InPlacePath, runner.queue); err != nil {
			return fmt.Errorf("rewriting list in place: %w", err)
		}
	}
	if runner.config.RemainingPath != "" {
		if err := actorlist.WriteAtomic(runner.config.RemainingPath, runner.queue); err != nil {
			return fmt.Errorf("writing remaining list: %w", err)
		}
	}
	return nil
}

// interrupted writes a final checkpoint and surfaces the cancellation.
func (runner *runner) interrupted(ctx context.Context) (Result, error) {
	fmt.Fprintln(runner.stderr, "Interrupted. Writing remaining list for resume...")
	if err := runner.checkpoint(); err != nil {
		runner.logger.Error("writing checkpoint during interruption", "error", err)
	}
	runner.result.Remaining = runner.queue
	return runner.result, ctx.Err()
}

// pace sleeps a random interval between items. Returns early with an
// error only when the context is cancelled mid-sleep.
func (runner *runner) pace(ctx context.Context) error {
	lo := math.Max(0, runner.config.MinDelay) * (1 + runner.config.Buffer)
	hi := math.Max(lo, runner.config.MaxDelay*(1+runner.config.Buffer))
	if hi <= 0 {
		return nil
	}
	delay := lo + runner.sample()*(hi-lo)
	select {
	case <-runner.clock.After(time.Duration(delay * float64(time.Second))):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (runner *runner) sample() float64 {
	if runner.config.Rand != nil {
		return runner.config.Rand.Float64()
	}
	return rand.Float64() //nolint:gosec // Pacing jitter, not security.
}
