package crawl

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Fixed delays applied after interactions with the rendered session. They
// are a simple rate limiter protecting the rendering session, not a
// correctness mechanism.
const (
	// ExpandInterval follows every tree item expansion attempt.
	ExpandInterval = 200 * time.Millisecond

	// PageInterval follows every page download attempt, successful or not.
	PageInterval = 300 * time.Millisecond
)

// Pacer enforces a fixed minimum interval between interactions using a
// token bucket with no bursting.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a Pacer with the given minimum interval.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the interval since the previous interaction has passed.
// Returns an error if the context is canceled before the wait completes.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
