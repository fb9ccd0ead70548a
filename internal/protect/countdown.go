package protect

import (
	"math"
	"time"
)

// RemainingMillis is the number of milliseconds left until expiresAt (epoch
// ms), clamped at zero. It is recomputed from the clock on every render and
// never kept as a decrementing counter.
func RemainingMillis(expiresAt int64, now time.Time) int64 {
	nowMs := now.UnixMilli()
	if expiresAt <= nowMs {
		return 0
	}
	left := expiresAt - nowMs
	if left < 0 {
		// exp far in the future with a pre-epoch clock
		return math.MaxInt64
	}
	return left
}

// Remaining is RemainingMillis as a Duration, saturating at the largest
// representable Duration for far-future expiries
func Remaining(expiresAt int64, now time.Time) time.Duration {
	left := RemainingMillis(expiresAt, now)
	if left > math.MaxInt64/int64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(left) * time.Millisecond
}

// MinutesLeft is the time left in whole minutes, rounded down
func MinutesLeft(expiresAt int64, now time.Time) int64 {
	return RemainingMillis(expiresAt, now) / time.Minute.Milliseconds()
}
