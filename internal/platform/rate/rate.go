// Package rate paces sequential work (per-target delays, outbound requests)
// on top of golang.org/x/time/rate.
package rate

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket. A nil *Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing rps operations per second with the given burst.
// rps <= 0 returns nil (unlimited).
func New(rps float64, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Every creates a limiter that lets one operation through per interval.
// The first call passes immediately; interval <= 0 returns nil (unlimited).
func Every(interval time.Duration) *Limiter {
	if interval <= 0 {
		return nil
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the limiter allows an operation or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}
