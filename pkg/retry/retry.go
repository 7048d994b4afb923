// Package retry runs startup connectivity checks with exponential backoff.
// Provider calls are never retried.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes the retry behavior.
type Policy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFactor   float64
	// OnRetry, when set, is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 500 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 10 * time.Second
	}
	if p.JitterFactor < 0 {
		p.JitterFactor = 0
	}
	return p
}

// BackOff builds the backoff schedule for p, bounded by p.Attempts and ctx.
func (p Policy) BackOff(ctx context.Context) backoff.BackOff {
	p = p.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialBackoff
	bo.MaxInterval = p.MaxBackoff
	bo.RandomizationFactor = p.JitterFactor
	bo.MaxElapsedTime = 0 // attempts bound the retries

	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.Attempts-1)), ctx)
}

// Do runs fn until it succeeds, the attempts are exhausted or ctx is done.
// The last error from fn, or the context error, is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
	}
	return backoff.RetryNotify(func() error { return fn(ctx) }, p.BackOff(ctx), notify)
}
