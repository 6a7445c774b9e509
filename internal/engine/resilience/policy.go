package resilience

import (
	"math"
	"time"
)

// Policy describes the bounded retry behavior of one wrapped operation. It is
// built once per operation and never mutated afterwards.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first. Minimum 1.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt. Must be positive.
	BaseDelay time.Duration

	// Multiplier scales the delay after every failed attempt. Minimum 1.
	Multiplier float64
}

// DefaultPolicy mirrors the retry behavior the travel APIs were tuned
// against: 3 attempts, 1.5s base delay, doubling.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 1500 * time.Millisecond, Multiplier: 2.0}
}

// normalized clamps the policy into its documented ranges so a zero or
// misconfigured value cannot produce a busy loop or a zero-attempt call.
func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy().BaseDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

// Delay returns the backoff before the attempt following failure number
// attempt (1-based): base * multiplier^(attempt-1).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	scale := math.Pow(p.Multiplier, float64(attempt-1))
	return time.Duration(float64(p.BaseDelay) * scale)
}

// MaxLatency is the worst-case wall time of a call under this policy given a
// per-attempt operation timeout: every attempt runs to its timeout and every
// backoff is waited in full. Callers imposing an outer deadline must size it
// above this ceiling; the wrapper itself has no cooperative cancellation
// beyond the context passed into each attempt.
func (p Policy) MaxLatency(opTimeout time.Duration) time.Duration {
	p = p.normalized()
	total := time.Duration(p.MaxAttempts) * opTimeout
	for attempt := 1; attempt < p.MaxAttempts; attempt++ {
		total += p.Delay(attempt)
	}
	return total
}
