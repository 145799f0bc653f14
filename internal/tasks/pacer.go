package tasks

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces remote calls out with a token bucket. A nil Pacer, or one
// built from a non-positive interval, never waits.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer that allows one event per interval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next token is available or the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
