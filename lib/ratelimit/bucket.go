// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bskyctl/bskyctl/lib/clock"
)

// Limiter grants permission to spend request budget. Acquire blocks
// until cost tokens are available and debits them. It fails only on
// context cancellation or an irrecoverable storage error; a cost <= 0
// is granted immediately.
type Limiter interface {
	Acquire(ctx context.Context, cost float64) error
}

// Nop returns a Limiter that never blocks, for --no-throttle runs.
func Nop() Limiter { return nopLimiter{} }

type nopLimiter struct{}

func (nopLimiter) Acquire(context.Context, float64) error { return nil }

// Polling bounds while waiting for tokens to accrue. The lower bound
// keeps a tiny deficit from busy-looping; the upper bound keeps the
// wait responsive when another process frees budget early.
const (
	minWait = 10 * time.Millisecond
	maxWait = 2 * time.Second
)

// bucketState is the persisted form: the token count and the unix
// timestamp (fractional seconds) it was valid at.
type bucketState struct {
	Tokens  float64 `json:"tokens"`
	Updated float64 `json:"updated"`
}

// SharedBucket is a token bucket shared by every process pointing at
// the same state directory and key. Tokens accrue at a fixed refill
// rate up to a capacity; each Acquire debits the persisted count under
// an exclusive flock so concurrent processes never double-spend.
//
// The lock is held only for the read-compute-write of the state file.
// Waiting for tokens happens outside the lock, in bounded sleeps, so a
// blocked process never starves the others.
type SharedBucket struct {
	refill    float64 // tokens per second
	capacity  float64 // maximum accumulated tokens
	statePath string
	lockPath  string
	clock     clock.Clock
	logger    *slog.Logger

	mu       sync.Mutex
	fallback *localBucket // set once shared state is unusable
}

var _ Limiter = (*SharedBucket)(nil)

// Config configures a SharedBucket. Dir and Key locate the state
// (<Dir>/<Key>.json with a sibling <Key>.lock). Refill is floored at
// 0.001 tokens/s and Capacity at 1.0; a nil Clock means the real
// clock and a nil Logger discards diagnostics.
type Config struct {
	Dir      string
	Key      string
	Refill   float64
	Capacity float64
	Clock    clock.Clock
	Logger   *slog.Logger
}

// NewSharedBucket creates the bucket and its state directory. It never
// fails: if the directory cannot be created the bucket starts degraded
// and throttles this process alone.
func NewSharedBucket(config Config) *SharedBucket {
	key := config.Key
	if key == "" {
		key = "req"
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	bucket := &SharedBucket{
		refill:    math.Max(0.001, config.Refill),
		capacity:  math.Max(1.0, config.Capacity),
		statePath: filepath.Join(config.Dir, key+".json"),
		lockPath:  filepath.Join(config.Dir, key+".lock"),
		clock:     clk,
		logger:    logger,
	}
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		bucket.degrade("creating state directory", err)
	}
	return bucket
}

// NewFromEnv builds the standard request bucket: refill from
// BSKY_REQ_RPS (default 8 tokens/s), capacity from BSKY_REQ_BURST
// (default 16), state under DefaultStateDir, key "req". The defaults
// stay well inside the hosted PDS limit of 3000 requests per 5
// minutes even with a few parallel invocations.
func NewFromEnv(clk clock.Clock, logger *slog.Logger) *SharedBucket {
	return NewSharedBucket(Config{
		Dir:      DefaultStateDir(),
		Key:      "req",
		Refill:   envFloat("BSKY_REQ_RPS", 8),
		Capacity: envFloat("BSKY_REQ_BURST", 16),
		Clock:    clk,
		Logger:   logger,
	})
}

// DefaultStateDir returns the directory for cross-process limiter
// state: $BSKYCTL_STATE_DIR if set, else $XDG_CACHE_HOME/bskyctl/ratelimit,
// else ~/.cache/bskyctl/ratelimit. Empty when no home directory is
// known, which puts the bucket into degraded per-process mode.
func DefaultStateDir() string {
	if dir := os.Getenv("BSKYCTL_STATE_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "bskyctl", "ratelimit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "bskyctl", "ratelimit")
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

// Acquire blocks until cost tokens are available, then debits them.
// Progress observed under the lock is never lost: even when the
// request cannot be granted yet, the refill accrued so far is written
// back before sleeping.
func (b *SharedBucket) Acquire(ctx context.Context, cost float64) error {
	if cost <= 0 {
		return nil
	}
	for {
		b.mu.Lock()
		local := b.fallback
		b.mu.Unlock()
		if local != nil {
			return local.Acquire(ctx, cost)
		}

		granted, wait, err := b.take(cost)
		if err != nil {
			return err
		}
		if granted {
			return nil
		}
		if wait == 0 {
			// Shared state just became unusable; retry through the
			// fallback armed by take.
			continue
		}

		select {
		case <-b.clock.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// take performs one locked read-compute-write round. It returns
// granted=true when the debit succeeded, otherwise the bounded wait
// before the next round. A zero wait without a grant means the bucket
// degraded and the caller should retry through the fallback.
func (b *SharedBucket) take(cost float64) (granted bool, wait time.Duration, err error) {
	lockFile, err := os.OpenFile(b.lockPath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		b.degrade("opening lock file", err)
		return false, 0, nil
	}
	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX); err != nil {
		lockFile.Close()
		b.degrade("locking state", err)
		return false, 0, nil
	}

	now := unixSeconds(b.clock.Now())
	state := b.readState(now)
	elapsed := math.Max(0, now-state.Updated)
	available := math.Min(b.capacity, state.Tokens+elapsed*b.refill)

	granted = available >= cost
	if granted {
		err = b.writeState(bucketState{Tokens: available - cost, Updated: now})
	} else {
		err = b.writeState(bucketState{Tokens: available, Updated: now})
	}
	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	lockFile.Close()
	if err != nil {
		return false, 0, err
	}
	if granted {
		return true, 0, nil
	}

	needed := cost - available
	wait = time.Duration(needed / b.refill * float64(time.Second))
	if wait < minWait {
		wait = minWait
	}
	if wait > maxWait {
		wait = maxWait
	}
	return false, wait, nil
}

// readState loads the persisted state, treating a missing, unreadable,
// or corrupt file as a full bucket stamped now.
func (b *SharedBucket) readState(now float64) bucketState {
	data, err := os.ReadFile(b.statePath)
	if err != nil {
		return bucketState{Tokens: b.capacity, Updated: now}
	}
	var state bucketState
	if err := json.Unmarshal(data, &state); err != nil {
		return bucketState{Tokens: b.capacity, Updated: now}
	}
	return state
}

// writeState persists the state via a temporary sibling and rename so
// a concurrent reader never sees a torn file.
func (b *SharedBucket) writeState(state bucketState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding rate limit state: %w", err)
	}
	temporaryPath := b.statePath + ".tmp"
	if err := os.WriteFile(temporaryPath, data, 0644); err != nil {
		return fmt.Errorf("writing rate limit state: %w", err)
	}
	if err := os.Rename(temporaryPath, b.statePath); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming rate limit state into place: %w", err)
	}
	return nil
}

// degrade switches this handle to process-local throttling for the
// rest of its life. Refill math is preserved; only the cross-process
// sharing is lost.
func (b *SharedBucket) degrade(what string, cause error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fallback != nil {
		return
	}
	b.logger.Warn("shared rate limit state unavailable; throttling per-process",
		"cause", what,
		"error", cause,
	)
	b.fallback = newLocalBucket(b.refill, b.capacity, b.clock)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
