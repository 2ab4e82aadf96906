// Package clock provides the monotonic timer shared by every timed
// wait in this module: a process-start-relative nanosecond clock and
// the timeout clamping discipline used by futex.TimedWait and the
// primitives built on it.
package clock

import (
	"time"

	"github.com/Enlarium/descent-engine-sub000/rcode"
)

// DefaultMaxTimeout is the cap on any blocking timeout, matching the
// source's default of one hour.
const DefaultMaxTimeout = 3600 * time.Second

// Clock is a monotonic, process-wide reference instant plus the
// maximum-timeout policy. The zero value is not ready to use; call
// Init.
type Clock struct {
	start      time.Time
	maxTimeout time.Duration
}

// Init establishes the reference instant. time.Now() on every
// platform Go supports returns a monotonic reading suitable as this
// reference, so Init cannot fail the way the source's OS-clock probe
// can — callers that need to model that failure path (e.g. an
// embedding system with no monotonic clock) should treat an error here
// as unreachable and may ignore it, but it is kept for interface
// parity with the degraded-startup contract in spec §4.2.
func Init(maxTimeout time.Duration) (*Clock, rcode.Code) {
	if maxTimeout <= 0 {
		maxTimeout = DefaultMaxTimeout
	}
	return &Clock{start: time.Now(), maxTimeout: maxTimeout}, rcode.OK
}

// Nanoseconds returns elapsed nanoseconds since Init, non-decreasing
// across all callers.
func (c *Clock) Nanoseconds() uint64 {
	d := time.Since(c.start)
	if d < 0 {
		return 0
	}
	return uint64(d)
}

// MaxTimeout returns the configured cap.
func (c *Clock) MaxTimeout() time.Duration { return c.maxTimeout }

// Delta returns (b-a) as seconds, negative if b < a, matching
// time_delta's contract.
func (c *Clock) Delta(a, b uint64) float64 {
	return float64(int64(b)-int64(a)) / 1e9
}

// ToTimeout clamps d to the configured maximum, matching
// time_to_timeout's silent-clamp contract (spec §3 "Timeout").
func (c *Clock) ToTimeout(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > c.maxTimeout {
		return c.maxTimeout
	}
	return d
}

// Deadline returns the absolute time.Time a caller blocking for d
// (after clamping) should give up at.
func (c *Clock) Deadline(d time.Duration) time.Time {
	return time.Now().Add(c.ToTimeout(d))
}

// Remaining returns the time left until deadline, zero if already
// past. Used to recompute a timed primitive's remaining budget after
// each spurious wake, per spec §4.5's "Timed variant".
func Remaining(deadline time.Time) time.Duration {
	d := time.Until(deadline)
	if d < 0 {
		return 0
	}
	return d
}
