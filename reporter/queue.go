package reporter

import (
	"sync"
	"sync/atomic"
	"time"
)

// QueueReporter buffers finished spans for batch export, e.g. by a
// caller-owned goroutine that flushes to a transport on an interval.
// It is the teacher's collector.go adapted to hold reporter.Span
// instead of a tracez.Span: same buffered-channel-plus-drop backpressure
// policy, same sync-mode escape hatch for deterministic tests.
//
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // field order kept close to the original for diffability
type QueueReporter struct {
	spans        []Span
	spansCh      chan Span
	stopCh       chan struct{}
	done         chan struct{}
	droppedCount atomic.Int64
	name         string
	mu           sync.Mutex
	closed       atomic.Bool
	syncMode     bool
}

// NewQueueReporter creates a queue reporter with the given name (for
// diagnostics) and channel buffer size.
func NewQueueReporter(name string, bufferSize int) *QueueReporter {
	r := &QueueReporter{
		name:    name,
		spans:   make([]Span, 0, 8),
		spansCh: make(chan Span, bufferSize),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *QueueReporter) run() {
	defer close(r.done)
	for {
		select {
		case <-r.stopCh:
			for {
				select {
				case s := <-r.spansCh:
					r.buffer(&s)
				default:
					return
				}
			}
		case s := <-r.spansCh:
			r.buffer(&s)
		}
	}
}

// Report implements Reporter. If the internal channel is full, the span
// is dropped and DroppedCount is incremented instead of blocking the
// caller — the tracer must never stall span-creation paths on a slow
// reporter.
func (r *QueueReporter) Report(s Span) {
	if r.closed.Load() {
		r.droppedCount.Add(1)
		return
	}
	if r.syncMode {
		r.buffer(&s)
		return
	}

	select {
	case r.spansCh <- s:
	default:
		r.droppedCount.Add(1)
	}
}

func (r *QueueReporter) buffer(s *Span) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.spans) >= cap(r.spans) {
		currentCap := cap(r.spans)
		newCap := currentCap * 2
		if currentCap >= 1024 {
			newCap = currentCap + currentCap/2
		}
		if newCap < 32 {
			newCap = 32
		}
		grown := make([]Span, len(r.spans), newCap)
		copy(grown, r.spans)
		r.spans = grown
	}
	r.spans = append(r.spans, *s)
}

// Export returns a copy of all buffered spans and clears the buffer.
func (r *QueueReporter) Export() []Span {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.spans) == 0 {
		return nil
	}
	result := make([]Span, len(r.spans))
	copy(result, r.spans)

	if cap(r.spans) > 256 && len(r.spans) < cap(r.spans)/8 {
		newCap := cap(r.spans) / 4
		if newCap < 32 {
			newCap = 32
		}
		r.spans = make([]Span, 0, newCap)
	} else {
		r.spans = r.spans[:0]
	}
	return result
}

// Count returns the number of currently buffered spans.
func (r *QueueReporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spans)
}

// DroppedCount returns the total number of spans dropped for
// backpressure or because the reporter was closed.
func (r *QueueReporter) DroppedCount() int64 { return r.droppedCount.Load() }

// SetSyncMode makes Report buffer directly rather than going through the
// channel, so tests observe every reported span without a sleep.
func (r *QueueReporter) SetSyncMode(sync bool) { r.syncMode = sync }

// String satisfies fmt.Stringer so a QueueReporter can back the
// tracer's diagnostic Tracer.String() (spec §8).
func (r *QueueReporter) String() string {
	if r.name == "" {
		return "QueueReporter{}"
	}
	return "QueueReporter{" + r.name + "}"
}

// Close shuts the reporter down, draining any spans already queued.
// Calling it more than once is safe; later calls do nothing.
func (r *QueueReporter) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	close(r.stopCh)
	select {
	case <-r.done:
	case <-time.After(100 * time.Millisecond):
	}
}
