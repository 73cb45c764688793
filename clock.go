package brave

import "github.com/zoobzio/clockz"

// Clock is a source of the current time in microseconds since the epoch.
// Implementations do not need to be monotonic; the tracer accepts
// whatever the supplied clock returns, including backward jumps.
type Clock interface {
	Now() int64
}

// clockzClock adapts a clockz.Clock (nanosecond wall time) into the
// microsecond-resolution Clock the recorder stamps spans with.
type clockzClock struct {
	clockz.Clock
}

// NewClock wraps a clockz.Clock as a Clock. Passing nil defaults to
// clockz.RealClock.
func NewClock(c clockz.Clock) Clock {
	if c == nil {
		c = clockz.RealClock
	}
	return clockzClock{c}
}

func (c clockzClock) Now() int64 {
	return c.Clock.Now().UnixMicro()
}
