// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package throttle spaces out requests to the remote repository.
package throttle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Gate blocks callers until the next request may start.
type Gate interface {
	Wait(ctx context.Context) error
}

// Interval is a minimum-interval gate: the first Wait returns at once and
// each later Wait returns no sooner than the configured interval after the
// previous one.
type Interval struct {
	limiter *rate.Limiter
}

// NewInterval returns a gate that admits one request per d. A non-positive
// d yields a gate that never blocks.
func NewInterval(d time.Duration) *Interval {
	if d <= 0 {
		return &Interval{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Interval{limiter: rate.NewLimiter(rate.Every(d), 1)}
}

// Wait implements Gate.
func (g *Interval) Wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait: %w", err)
	}
	return nil
}
