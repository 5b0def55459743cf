package conversation

import (
	"context"
	"time"
)

// ExhaustionAction says what a reply does once the model cannot answer.
type ExhaustionAction int

const (
	// ExhaustionFallback answers from the canned script.
	ExhaustionFallback ExhaustionAction = iota
	// ExhaustionFail surfaces UpstreamUnavailable to the caller.
	ExhaustionFail
)

// RetryPolicy bounds how often a transient model failure is retried.
type RetryPolicy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	Multiplier     float64
	AttemptTimeout time.Duration
	OnExhausted    ExhaustionAction
	// Sleep waits between attempts; tests replace it with a fake clock.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy retries three times after 1s, 2s and 4s, then falls back.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		Multiplier:     2,
		AttemptTimeout: 20 * time.Second,
		OnExhausted:    ExhaustionFallback,
		Sleep:          sleepContext,
	}
}

// Delay returns the wait before retry n (1-based).
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := float64(p.BaseDelay)
	for i := 1; i < n; i++ {
		d *= mult
	}
	return time.Duration(d)
}

// Schedule lists every backoff delay the policy can wait.
func (p RetryPolicy) Schedule() []time.Duration {
	out := make([]time.Duration, 0, p.MaxRetries)
	for i := 1; i <= p.MaxRetries; i++ {
		out = append(out, p.Delay(i))
	}
	return out
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
