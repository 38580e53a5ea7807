// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/bskyctl/bskyctl/lib/clock"
)

// Policy describes the retry schedule for a rate-limited call: up to
// Attempts total invocations, with retry k (0-based) delayed by
// uniform(DelayMin, DelayMax) * Factor^k seconds. Announce prints a
// warning before each delay so an interactive user sees why the tool
// went quiet.
type Policy struct {
	Attempts int
	DelayMin float64
	DelayMax float64
	Factor   float64
	Announce bool
}

// ReadPolicy covers idempotent lookups: short, quiet waits.
var ReadPolicy = Policy{Attempts: 3, DelayMin: 2, DelayMax: 5, Factor: 2}

// WritePolicy covers record mutations, which the PDS limits far more
// aggressively than reads: long, announced waits.
var WritePolicy = Policy{Attempts: 3, DelayMin: 15, DelayMax: 35, Factor: 1.6, Announce: true}

// delay computes the wait before retry number attempt, with sample
// drawn uniformly from [0, 1).
func (p Policy) delay(sample float64, attempt int) time.Duration {
	seconds := (p.DelayMin + sample*(p.DelayMax-p.DelayMin)) * math.Pow(p.Factor, float64(attempt))
	return time.Duration(seconds * float64(time.Second))
}

// Caller wraps remote calls with throttling and retry-on-rate-limit.
// Exactly one token is acquired per wrapped call, not per attempt:
// retries are already paced by the backoff delay, and double-charging
// them would starve the other processes sharing the bucket.
//
// Retryable classifies errors that warrant a retry; everything else
// propagates immediately. The zero value works: no throttling, no
// retries, real clock.
type Caller struct {
	Limiter   Limiter
	Clock     clock.Clock
	Logger    *slog.Logger
	Retryable func(error) bool
	Stderr    io.Writer  // announce destination, default os.Stderr
	Rand      *rand.Rand // jitter source, default the shared generator
}

// Read invokes fn under ReadPolicy.
func (c *Caller) Read(ctx context.Context, fn func() error) error {
	return c.Do(ctx, ReadPolicy, fn)
}

// Write invokes fn under WritePolicy.
func (c *Caller) Write(ctx context.Context, fn func() error) error {
	return c.Do(ctx, WritePolicy, fn)
}

// Do invokes fn under an explicit policy.
func (c *Caller) Do(ctx context.Context, policy Policy, fn func() error) error {
	_, err := DoResult(ctx, c, policy, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// ReadResult invokes fn under ReadPolicy and returns its value.
func ReadResult[T any](ctx context.Context, c *Caller, fn func() (T, error)) (T, error) {
	return DoResult(ctx, c, ReadPolicy, fn)
}

// WriteResult invokes fn under WritePolicy and returns its value.
func WriteResult[T any](ctx context.Context, c *Caller, fn func() (T, error)) (T, error) {
	return DoResult(ctx, c, WritePolicy, fn)
}

// DoResult acquires one token, then invokes fn with up to
// policy.Attempts tries, sleeping the policy delay between retryable
// failures. The last error is returned as-is so callers can keep
// classifying it with errors.As.
func DoResult[T any](ctx context.Context, c *Caller, policy Policy, fn func() (T, error)) (T, error) {
	var zero T
	if c.Limiter != nil {
		if err := c.Limiter.Acquire(ctx, 1.0); err != nil {
			return zero, err
		}
	}
	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if c.Retryable == nil || !c.Retryable(err) || attempt >= policy.Attempts-1 {
			return zero, err
		}

		delay := policy.delay(c.sample(), attempt)
		if policy.Announce {
			fmt.Fprintf(c.stderr(), "Rate limited; backing off %.1fs ...\n", delay.Seconds())
		}
		if c.Logger != nil {
			c.Logger.Debug("rate limited, retrying",
				"attempt", attempt+1,
				"delay", delay,
			)
		}
		select {
		case <-c.clock().After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func (c *Caller) clock() clock.Clock {
	if c.Clock == nil {
		return clock.Real()
	}
	return c.Clock
}

func (c *Caller) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

func (c *Caller) sample() float64 {
	if c.Rand != nil {
		return c.Rand.Float64()
	}
	//nolint:gosec // Backoff jitter, not security.
	return rand.Float64()
}
