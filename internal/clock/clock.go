// internal/clock/clock.go

// Package clock is the time source used by the scheduler.
// Production code uses Real(); tests use Fake() and advance time explicitly.
package clock

import "time"

// Clock is the subset of the time package the poller depends on.
type Clock interface {
	Now() time.Time

	// After behaves like time.After. If d <= 0 the channel fires immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
