package propagation

import "context"

// bridgeKeyType is a private type for the context.Context key, avoiding
// collisions with keys other packages may use.
type bridgeKeyType struct{}

var bridgeKey bridgeKeyType

// WithContext attaches ctx to a context.Context for explicit hand-off
// across a goroutine boundary. CurrentTraceContext implementations are
// goroutine-local by design (see NewCurrentTraceContext) and do not
// follow work automatically when it moves to a new goroutine; a task
// that needs the trace context on the other side must carry it via
// context.Context and call FromContext + NewScope on arrival. This is
// the "explicit out-of-scope helper, not automatic" wrapper Design
// Notes §9 calls for, adapted from the teacher's context-bundle pattern
// in span.go.
func WithContext(parent context.Context, ctx TraceContext) context.Context {
	return context.WithValue(parent, bridgeKey, ctx)
}

// FromContext extracts a TraceContext previously attached with
// WithContext.
func FromContext(ctx context.Context) (TraceContext, bool) {
	if ctx == nil {
		return TraceContext{}, false
	}
	v, ok := ctx.Value(bridgeKey).(TraceContext)
	return v, ok
}

// WrapFunc returns a func() that installs ctx as current on cc for the
// duration of fn's execution, then restores the previous value. This is
// the helper a caller hands to go func() { ... } or a worker pool to
// carry the active span into a new goroutine.
func WrapFunc(cc CurrentTraceContext, ctx TraceContext, fn func()) func() {
	return func() {
		scope := cc.NewScope(&ctx)
		defer scope.Close()
		fn()
	}
}
