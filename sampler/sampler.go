// Package sampler implements the tracer's sampling predicate: a pure,
// deterministic mapping from a trace id to a sampled/not-sampled
// decision so that every service touched by one trace makes the same
// call.
package sampler

import "sync"

// Sampler decides, for a given trace id, whether the trace should be
// recorded. Implementations must be deterministic: repeated calls with
// the same traceID always return the same result within one process.
type Sampler interface {
	IsSampled(traceID int64) bool
}

// Func adapts a plain function to a Sampler.
type Func func(traceID int64) bool

// IsSampled implements Sampler.
func (f Func) IsSampled(traceID int64) bool { return f(traceID) }

// Always samples every trace.
var Always Sampler = Func(func(int64) bool { return true })

// Never samples no trace.
var Never Sampler = Func(func(int64) bool { return false })

// boundarySampler samples a fixed fraction of traces by comparing the
// trace id's low 31 bits (a non-negative value) against a precomputed
// boundary. This is the classic counting-sampler boundary technique:
// as long as trace ids are uniformly distributed, comparing against a
// fixed threshold yields the target rate without any shared state.
type boundarySampler struct {
	boundary int64
}

// NewRateSampler returns a Sampler that samples approximately the given
// fraction (0.0 to 1.0 inclusive) of traces. A rate of 0 is equivalent
// to Never; a rate of 1 is equivalent to Always.
func NewRateSampler(rate float64) Sampler {
	if rate <= 0 {
		return Never
	}
	if rate >= 1 {
		return Always
	}
	return &boundarySampler{boundary: int64(rate * float64(1<<31))}
}

func (s *boundarySampler) IsSampled(traceID int64) bool {
	// Use the low 31 bits so the result is stable regardless of sign.
	t := traceID & 0x7fffffff
	return t < s.boundary
}

// Once wraps a Sampler so that a panic recovered from the underlying
// predicate is treated as "not sampled" and reported to onPanic exactly
// once per process, per §7 of the tracer's error-handling design.
func Once(s Sampler, onPanic func(recovered interface{})) Sampler {
	return &onceGuard{delegate: s, onPanic: onPanic}
}

type onceGuard struct {
	delegate Sampler
	onPanic  func(recovered interface{})
	reported sync.Once
}

func (g *onceGuard) IsSampled(traceID int64) (sampled bool) {
	defer func() {
		if r := recover(); r != nil {
			sampled = false
			if g.onPanic != nil {
				g.reported.Do(func() { g.onPanic(r) })
			}
		}
	}()
	return g.delegate.IsSampled(traceID)
}
