package trainer

import (
	"context"
	"math/rand"
	"time"
)

// Environment is the simulation the population is evaluated in. The
// trainer calls it from a single goroutine; only network Steps fan out.
type Environment interface {
	// Reset repositions every individual and the goal for a new generation.
	Reset(rng *rand.Rand, n int)
	// Observe writes individual id's observation for this tick into dst.
	Observe(id int, dst []float32)
	// Actuate applies individual id's network outputs for this tick.
	Actuate(id int, action []float32)
	// Advance integrates the shared simulation by one tick.
	Advance(dt float32)
	// Score returns individual id's fitness at the end of the window.
	// Lower is better.
	Score(id int) float64
}

// Clock paces calls to Trainer.Update in Run.
type Clock interface {
	Wait(ctx context.Context) error
}

// Unpaced never waits; the trainer runs as fast as it can.
type Unpaced struct{}

// Wait returns immediately unless ctx is done.
func (Unpaced) Wait(ctx context.Context) error {
	return ctx.Err()
}

// TickerClock waits for a fixed wall-clock interval between updates.
type TickerClock struct {
	ticker *time.Ticker
}

// NewTickerClock creates a clock firing every interval.
func NewTickerClock(interval time.Duration) *TickerClock {
	return &TickerClock{ticker: time.NewTicker(interval)}
}

// Wait blocks until the next tick or until ctx is done.
func (c *TickerClock) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ticker.C:
		return nil
	}
}

// Stop releases the ticker.
func (c *TickerClock) Stop() {
	c.ticker.Stop()
}
