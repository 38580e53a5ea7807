// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/bskyctl/bskyctl/lib/clock"
)

// localBucket throttles a single process with the same refill math as
// SharedBucket. The limiter is driven with explicit timestamps from
// the injected clock rather than its own wall-clock reads, so degraded
// mode stays deterministic under test.
type localBucket struct {
	clock   clock.Clock
	limiter *rate.Limiter
}

var _ Limiter = (*localBucket)(nil)

func newLocalBucket(refill, capacity float64, clk clock.Clock) *localBucket {
	return &localBucket{
		clock:   clk,
		limiter: rate.NewLimiter(rate.Limit(refill), int(math.Ceil(capacity))),
	}
}

// Acquire reserves ceil(cost) tokens and sleeps out the reservation
// delay. Fractional costs round up; the shared bucket has no such
// rounding, but the callers of this package only ever spend whole
// tokens.
func (b *localBucket) Acquire(ctx context.Context, cost float64) error {
	if cost <= 0 {
		return nil
	}
	tokens := int(math.Ceil(cost))
	reservation := b.limiter.ReserveN(b.clock.Now(), tokens)
	if !reservation.OK() {
		return fmt.Errorf("rate limit cost %d exceeds bucket capacity %d", tokens, b.limiter.Burst())
	}
	delay := reservation.DelayFrom(b.clock.Now())
	if delay <= 0 {
		return nil
	}
	select {
	case <-b.clock.After(delay):
		return nil
	case <-ctx.Done():
		reservation.CancelAt(b.clock.Now())
		return ctx.Err()
	}
}
