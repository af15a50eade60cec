package engine

import (
	"time"

	"github.com/constellation-engine/core/dagspec"
)

const maxExponentialBackoff = time.Hour

// computeBackoff implements §4.5.4 step 5's three backoff kinds. It is
// grounded on resilience.calculateBackoff's shape (attempt-indexed delay
// computation) but follows the exact per-kind formulas the engine's retry
// contract specifies, which resilience.RetryConfig's single exponential
// curve cannot express for fixed/linear.
func computeBackoff(kind dagspec.BackoffKind, delayMs int, attempt int) time.Duration {
	delay := time.Duration(delayMs) * time.Millisecond
	switch kind {
	case dagspec.BackoffFixed:
		return delay
	case dagspec.BackoffLinear:
		return delay * time.Duration(attempt)
	case dagspec.BackoffExponential:
		d := delay
		for i := 1; i < attempt; i++ {
			d *= 2
			if d > maxExponentialBackoff {
				return maxExponentialBackoff
			}
		}
		return d
	default:
		return delay
	}
}
