package propagation

import (
	"fmt"
	"sync"

	"github.com/wangxiaojing2413/brave/internal/goid"
)

// CurrentTraceContext manages the per-goroutine active-context stack.
// NewScope installs ctx as current on the calling goroutine and returns
// a Scope whose Close restores the previous value. Nesting is LIFO.
// Passing a nil ctx installs "no current span".
type CurrentTraceContext interface {
	Get() (TraceContext, bool)
	NewScope(ctx *TraceContext) Scope
}

// Scope is a handle returned by NewScope; releasing it (Close) restores
// whatever was current before the scope was entered.
type Scope interface {
	Close()
}

type frame struct {
	ctx      *TraceContext
	prev     *frame
	goroutine uint64
}

// goroutineLocal is the default CurrentTraceContext, backed by a stack
// keyed on the calling goroutine's id (internal/goid). This is Go's
// substitute for the native thread-local facility Brave's Java
// implementation uses; Go has none, so callers that need automatic
// propagation across goroutine hand-offs must use WithContext/FromContext
// instead of relying on this implicitly following a task to a new
// goroutine.
type goroutineLocal struct {
	mu    sync.Mutex
	tops  map[uint64]*frame
}

// NewCurrentTraceContext returns the default, lenient
// CurrentTraceContext.
func NewCurrentTraceContext() CurrentTraceContext {
	return &goroutineLocal{tops: make(map[uint64]*frame)}
}

func (g *goroutineLocal) Get() (TraceContext, bool) {
	id := goid.Current()
	g.mu.Lock()
	top := g.tops[id]
	g.mu.Unlock()
	if top == nil || top.ctx == nil {
		return TraceContext{}, false
	}
	return *top.ctx, true
}

func (g *goroutineLocal) NewScope(ctx *TraceContext) Scope {
	id := goid.Current()
	g.mu.Lock()
	prev := g.tops[id]
	next := &frame{ctx: ctx, prev: prev, goroutine: id}
	g.tops[id] = next
	g.mu.Unlock()
	return &lenientScope{owner: g, id: id, frame: next}
}

type lenientScope struct {
	owner *goroutineLocal
	id    uint64
	frame *frame
}

func (s *lenientScope) Close() {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	// Best-effort restore: if the current top is ours, pop it. If a
	// caller mis-nested scopes, just restore whatever this scope
	// remembers as its predecessor rather than corrupting the stack
	// further.
	if s.owner.tops[s.id] == s.frame {
		s.owner.tops[s.id] = s.frame.prev
		return
	}
	s.owner.tops[s.id] = s.frame.prev
}

// strictCurrentTraceContext wraps another CurrentTraceContext and
// verifies that scopes are released on the same goroutine and in
// reverse order of acquisition. Violations panic with a descriptive
// message rather than silently corrupting the stack, per the "strict
// variant" of §4.5.
type strictCurrentTraceContext struct {
	delegate *goroutineLocal
}

// NewStrictCurrentTraceContext returns a CurrentTraceContext that raises
// a programmer-error signal (panic) on mis-nested scope release instead
// of silently recovering.
func NewStrictCurrentTraceContext() CurrentTraceContext {
	return &strictCurrentTraceContext{delegate: &goroutineLocal{tops: make(map[uint64]*frame)}}
}

func (s *strictCurrentTraceContext) Get() (TraceContext, bool) { return s.delegate.Get() }

func (s *strictCurrentTraceContext) NewScope(ctx *TraceContext) Scope {
	id := goid.Current()
	s.delegate.mu.Lock()
	prev := s.delegate.tops[id]
	next := &frame{ctx: ctx, prev: prev, goroutine: id}
	s.delegate.tops[id] = next
	s.delegate.mu.Unlock()
	return &strictScope{owner: s.delegate, id: id, frame: next}
}

type strictScope struct {
	owner   *goroutineLocal
	id      uint64
	frame   *frame
	closed  bool
}

func (s *strictScope) Close() {
	current := goid.Current()
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	if s.closed {
		panic("brave: scope closed more than once")
	}
	if current != s.id {
		panic(fmt.Sprintf("brave: scope released on goroutine %d, acquired on %d", current, s.id))
	}
	if s.owner.tops[s.id] != s.frame {
		panic("brave: scopes released out of order")
	}
	s.owner.tops[s.id] = s.frame.prev
	s.closed = true
}
