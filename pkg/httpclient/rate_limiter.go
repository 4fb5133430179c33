package httpclient

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket holding at most requestsPerMinute tokens,
// refilled evenly over a minute.
type RateLimiter struct {
	tokens chan struct{}
	refill *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewRateLimiter creates a full bucket. requestsPerMinute must be positive.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	tokens := make(chan struct{}, requestsPerMinute)
	for i := 0; i < requestsPerMinute; i++ {
		tokens <- struct{}{}
	}

	rl := &RateLimiter{
		tokens: tokens,
		refill: time.NewTicker(time.Minute / time.Duration(requestsPerMinute)),
		done:   make(chan struct{}),
	}
	go rl.startRefill()
	return rl
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.tokens:
		return nil
	}
}

func (rl *RateLimiter) startRefill() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.refill.C:
			select {
			case rl.tokens <- struct{}{}:
			default:
				// bucket full
			}
		}
	}
}

// Stop ends the refill goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() {
		rl.refill.Stop()
		close(rl.done)
	})
}
