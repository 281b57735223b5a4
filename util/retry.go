// Package util provides utility functions for Package URLs (PURLs), version
// comparison for vulnerability checking, CVSS scoring, and environment handling.
//
//revive:disable-next-line:var-naming
package util

import (
	"time"

	"github.com/cenkalti/backoff"
)

// linearBackOff grows the delay linearly with the attempt number
// (delay, 2*delay, 3*delay, ...), stopping after maxAttempts.
type linearBackOff struct {
	delay       time.Duration
	maxAttempts int
	attempt     int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	if b.attempt >= b.maxAttempts {
		return backoff.Stop
	}
	return time.Duration(b.attempt) * b.delay
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// Retry runs op up to maxAttempts times with linear backoff between attempts,
// returning the last error once attempts are exhausted. Intended for transient
// external calls; the cache and orchestrator never retry internally.
func Retry(maxAttempts int, delay time.Duration, op func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return backoff.Retry(op, &linearBackOff{delay: delay, maxAttempts: maxAttempts})
}
