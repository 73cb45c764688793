package brave

import (
	"sync"

	"github.com/wangxiaojing2413/brave/propagation"
	"github.com/wangxiaojing2413/brave/reporter"
)

// spanKey identifies one in-flight span in the Recorder's registry.
type spanKey struct {
	traceIDHigh int64
	traceID     int64
	spanID      int64
}

func keyOf(ctx propagation.TraceContext) spanKey {
	return spanKey{traceIDHigh: ctx.TraceIDHigh(), traceID: ctx.TraceID(), spanID: ctx.SpanID()}
}

// mutableSpan is the mutable per-span accumulator described in spec
// §4.4. It is created when a Real span is constructed (not on first
// mutation) and removed from the recorder on finish,
// mirroring the teacher's ActiveSpan (a mutex guarding a Tags map that
// no longer exists once Finish sends it downstream).
type mutableSpan struct {
	mu             sync.Mutex
	ctx            propagation.TraceContext
	name           string
	kind           reporter.Kind
	start          int64
	finish         int64
	finished       bool
	annotations    []reporter.Annotation
	tags           map[string]string
	remoteEndpoint *reporter.Endpoint
	err            error
}

func newMutableSpan(ctx propagation.TraceContext, start int64) *mutableSpan {
	return &mutableSpan{ctx: ctx, start: start}
}

func (m *mutableSpan) setName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
}

func (m *mutableSpan) setKind(kind reporter.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kind = kind
}

func (m *mutableSpan) tag(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tags == nil {
		m.tags = make(map[string]string)
	}
	m.tags[key] = value
}

func (m *mutableSpan) annotate(ts int64, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annotations = append(m.annotations, reporter.Annotation{Timestamp: ts, Value: value})
}

func (m *mutableSpan) setRemoteEndpoint(ep reporter.Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := ep
	m.remoteEndpoint = &e
}

func (m *mutableSpan) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// snapshotToDiagnosticSpan renders enough of the in-flight span for
// Tracer.String() (spec §8, S5) without needing a finish timestamp.
func (m *mutableSpan) snapshotToDiagnosticSpan(localEndpoint reporter.Endpoint) reporter.Span {
	m.mu.Lock()
	defer m.mu.Unlock()
	return reporter.Span{
		TraceID:       m.ctx.TraceIDString(),
		ID:            m.ctx.SpanIDString(),
		Timestamp:     m.start,
		LocalEndpoint: &localEndpoint,
	}
}

// finishToSpan performs the total conversion into the reporter's input
// structure. All required fields are defaulted, so nothing downstream
// needs to special-case an unset name, kind or tag.
func (m *mutableSpan) finishToSpan(finishTS int64, localEndpoint reporter.Endpoint) reporter.Span {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := reporter.Span{
		TraceID:       m.ctx.TraceIDString(),
		ID:            m.ctx.SpanIDString(),
		Name:          m.name,
		Kind:          m.kind,
		Timestamp:     m.start,
		Debug:         m.ctx.Debug(),
		Shared:        m.ctx.Shared(),
		LocalEndpoint: &localEndpoint,
		Annotations:   m.annotations,
		Tags:          m.tags,
	}
	s.ParentID = m.ctx.ParentIDString()
	if finishTS > m.start {
		s.Duration = finishTS - m.start
	}
	s.RemoteEndpoint = m.remoteEndpoint
	if m.err != nil {
		s.Err = m.err.Error()
		if s.Tags == nil {
			s.Tags = make(map[string]string)
		}
		s.Tags["error"] = m.err.Error()
	}
	return s
}

// Recorder is the in-flight span registry (SpanMap in spec §4.4): at
// most one mutableSpan per key, safe for concurrent getOrCreate/remove.
type Recorder struct {
	mu            sync.Mutex
	inFlight      map[spanKey]*mutableSpan
	localEndpoint reporter.Endpoint
}

func newRecorder(localEndpoint reporter.Endpoint) *Recorder {
	return &Recorder{inFlight: make(map[spanKey]*mutableSpan), localEndpoint: localEndpoint}
}

// getOrCreate returns the mutableSpan for ctx, creating and registering
// one on first access. Concurrent callers for the same key observe the
// same record.
func (r *Recorder) getOrCreate(ctx propagation.TraceContext, start int64) *mutableSpan {
	key := keyOf(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.inFlight[key]; ok {
		return m
	}
	m := newMutableSpan(ctx, start)
	r.inFlight[key] = m
	return m
}

// remove pops the mutableSpan for ctx out of the registry. A second call
// for the same key returns (nil, false) — finish is idempotent.
func (r *Recorder) remove(ctx propagation.TraceContext) (*mutableSpan, bool) {
	key := keyOf(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.inFlight[key]
	if !ok {
		return nil, false
	}
	delete(r.inFlight, key)
	return m, true
}

// snapshot returns every still in-flight span, oldest access order not
// guaranteed. Used by Tracer.String() diagnostics.
func (r *Recorder) snapshot() []*mutableSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mutableSpan, 0, len(r.inFlight))
	for _, m := range r.inFlight {
		out = append(out, m)
	}
	return out
}
