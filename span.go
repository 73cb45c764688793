package brave

import (
	"github.com/wangxiaojing2413/brave/propagation"
	"github.com/wangxiaojing2413/brave/reporter"
)

// Span is either a Real span (backed by the recorder) or a Noop span
// (valid context, no recording). Modeled as an interface with two
// implementations rather than a shared base type, per Design Notes §9 —
// composition over inheritance, and Noop's methods are trivially
// inlinable no-ops.
type Span interface {
	// Context returns this span's identifier record. Always valid, even
	// for a Noop span, so instrumentation code can still propagate ids.
	Context() propagation.TraceContext

	// IsNoop reports whether this span records anything.
	IsNoop() bool

	// Start marks the span as started at ts (microseconds since epoch).
	// Only the first Start takes effect. A Real span's mutableSpan entry
	// is registered in the recorder when the span is constructed, not on
	// Start or on first mutation, so a span that is never Started or
	// mutated is still in flight and is still reported by Finish.
	Start(ts int64) Span

	Name(name string) Span
	Kind(kind reporter.Kind) Span
	Tag(key, value string) Span
	Annotate(ts int64, value string) Span
	RemoteEndpoint(ep reporter.Endpoint) Span
	Error(err error) Span

	// Finish completes the span at the tracer clock's current time
	// (FinishAt uses the given ts, in microseconds since epoch) and
	// hands it to the tracer's finished-span pipeline. Safe to call
	// more than once; only the first call has an effect.
	Finish()
	FinishAt(ts int64)
}

// realSpan is the Real variant: holds the context, a pointer into the
// recorder, and the owning tracer (needed only to reach the recorder,
// clock and finished-span pipeline — not stored as a cyclic back
// reference, per Design Notes §9's "break cycles via indices").
type realSpan struct {
	ctx    propagation.TraceContext
	tracer *Tracer
	m      *mutableSpan
}

func newRealSpan(t *Tracer, ctx propagation.TraceContext) *realSpan {
	return &realSpan{ctx: ctx, tracer: t, m: t.recorder.getOrCreate(ctx, 0)}
}

func (s *realSpan) Context() propagation.TraceContext { return s.ctx }
func (s *realSpan) IsNoop() bool                       { return false }

func (s *realSpan) Start(ts int64) Span {
	s.m.mu.Lock()
	if s.m.start == 0 {
		s.m.start = ts
	}
	s.m.mu.Unlock()
	return s
}

func (s *realSpan) Name(name string) Span {
	s.m.setName(name)
	return s
}

func (s *realSpan) Kind(kind reporter.Kind) Span {
	s.m.setKind(kind)
	return s
}

func (s *realSpan) Tag(key, value string) Span {
	s.m.tag(key, value)
	return s
}

func (s *realSpan) Annotate(ts int64, value string) Span {
	s.m.annotate(ts, value)
	return s
}

func (s *realSpan) RemoteEndpoint(ep reporter.Endpoint) Span {
	s.m.setRemoteEndpoint(ep)
	return s
}

func (s *realSpan) Error(err error) Span {
	s.m.setError(err)
	return s
}

func (s *realSpan) Finish() { s.FinishAt(s.tracer.clock.Now()) }

func (s *realSpan) FinishAt(ts int64) {
	m, ok := s.tracer.recorder.remove(s.ctx)
	if !ok {
		return // already finished; idempotent per spec §4.4.
	}
	span := m.finishToSpan(ts, s.tracer.recorder.localEndpoint)
	s.tracer.reportFinished(span)
}

// noopSpan carries only a context so instrumentation code can still
// read ids; every mutator is a no-op.
type noopSpan struct {
	ctx propagation.TraceContext
}

func newNoopSpan(ctx propagation.TraceContext) *noopSpan { return &noopSpan{ctx: ctx} }

func (s *noopSpan) Context() propagation.TraceContext           { return s.ctx }
func (s *noopSpan) IsNoop() bool                                { return true }
func (s *noopSpan) Start(int64) Span                            { return s }
func (s *noopSpan) Name(string) Span                            { return s }
func (s *noopSpan) Kind(reporter.Kind) Span                     { return s }
func (s *noopSpan) Tag(string, string) Span                     { return s }
func (s *noopSpan) Annotate(int64, string) Span                 { return s }
func (s *noopSpan) RemoteEndpoint(reporter.Endpoint) Span       { return s }
func (s *noopSpan) Error(error) Span                            { return s }
func (s *noopSpan) Finish()                                     {}
func (s *noopSpan) FinishAt(int64)                              {}
