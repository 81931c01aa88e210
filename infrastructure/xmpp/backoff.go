package xmpp

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewBackoff is the redial schedule: base * 1.6^n capped at maxDelay,
// jittered by 20%, with no overall deadline.
func NewBackoff(base, maxDelay time.Duration) *backoff.ExponentialBackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithMaxInterval(maxDelay),
		backoff.WithMultiplier(1.6),
		backoff.WithRandomizationFactor(0.2),
		backoff.WithMaxElapsedTime(0),
	)
}

// redialPolicy bounds the configured schedule by MaxAttempts and ctx.
// A fresh policy starts from the base delay.
func (c *Client) redialPolicy(ctx context.Context) backoff.BackOff {
	var policy backoff.BackOff = c.opts.Backoff
	if policy == nil {
		policy = NewBackoff(time.Second, 2*time.Minute)
	}
	if c.opts.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.opts.MaxAttempts))
	}
	policy = backoff.WithContext(policy, ctx)
	policy.Reset()
	return policy
}
