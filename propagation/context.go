package propagation

import (
	"strings"

	"github.com/wangxiaojing2413/brave/internal/hex"
)

// TraceContext is the immutable identifier+flags record carried on the
// wire and in-process to link spans. The zero value is never valid on
// its own; construct one with NewBuilder.
type TraceContext struct {
	traceIDHigh int64
	traceID     int64
	parentID    int64
	hasParent   bool
	spanID      int64
	sampled     Tri
	debug       bool
	shared      bool
	extra       []interface{}
}

// TraceIDHigh returns the high 64 bits of a 128-bit trace id, or 0 when
// the trace id is 64-bit.
func (c TraceContext) TraceIDHigh() int64 { return c.traceIDHigh }

// TraceID returns the (low, or only) 64 bits of the trace id. Never 0.
func (c TraceContext) TraceID() int64 { return c.traceID }

// ParentID returns the parent span id and whether this context has one.
// A root span has no parent.
func (c TraceContext) ParentID() (id int64, ok bool) { return c.parentID, c.hasParent }

// SpanID returns this span's id. Never 0.
func (c TraceContext) SpanID() int64 { return c.spanID }

// SampledTri returns the tri-state sampling decision.
func (c TraceContext) SampledTri() Tri { return c.sampled }

// Sampled returns (sampled, ok); ok is false when undecided.
func (c TraceContext) Sampled() (bool, bool) {
	if c.sampled == TriUndecided {
		return false, false
	}
	return c.sampled == TriSampled, true
}

// Debug reports whether the debug flag is set. Debug implies Sampled.
func (c TraceContext) Debug() bool { return c.debug }

// Shared reports whether this span's id was joined from the wire and is
// shared with the calling service's half of the span.
func (c TraceContext) Shared() bool { return c.shared }

// Extra returns the ordered, opaque propagation-plugin payloads attached
// to this context. The returned slice must not be mutated.
func (c TraceContext) Extra() []interface{} { return c.extra }

// WithExtraAppended returns a copy of c with more appended after its
// existing extra payloads, preserving append order (spec §4.6's "current
// extras first, then extracted's").
func (c TraceContext) WithExtraAppended(more []interface{}) TraceContext {
	if len(more) == 0 {
		return c
	}
	combined := make([]interface{}, 0, len(c.extra)+len(more))
	combined = append(combined, c.extra...)
	combined = append(combined, more...)
	c.extra = combined
	return c
}

// Is128Bit reports whether this context carries a 128-bit trace id.
func (c TraceContext) Is128Bit() bool { return c.traceIDHigh != 0 }

// TraceIDString renders the trace id as 16 or 32 lowercase hex chars.
func (c TraceContext) TraceIDString() string {
	if c.Is128Bit() {
		return hex.Encode32(c.traceIDHigh, c.traceID)
	}
	return hex.Encode16(c.traceID)
}

// SpanIDString renders the span id as 16 lowercase hex chars.
func (c TraceContext) SpanIDString() string { return hex.Encode16(c.spanID) }

// ParentIDString renders the parent id as 16 lowercase hex chars, or ""
// if this is a root span.
func (c TraceContext) ParentIDString() string {
	if !c.hasParent {
		return ""
	}
	return hex.Encode16(c.parentID)
}

// Equal implements the spec's equality rule: identifiers and sampling
// flags must match; shared and extra are ignored.
func (c TraceContext) Equal(o TraceContext) bool {
	return c.traceIDHigh == o.traceIDHigh &&
		c.traceID == o.traceID &&
		c.hasParent == o.hasParent &&
		c.parentID == o.parentID &&
		c.spanID == o.spanID &&
		c.sampled == o.sampled &&
		c.debug == o.debug
}

// String matches Java Brave's TraceContext#toString: "traceId/spanId" in
// lowercase hex, no leading "0x".
func (c TraceContext) String() string {
	var b strings.Builder
	b.WriteString(c.TraceIDString())
	b.WriteByte('/')
	b.WriteString(c.SpanIDString())
	return b.String()
}

// Builder constructs a TraceContext. The zero Builder is ready to use.
type Builder struct {
	c TraceContext
}

// NewBuilder starts a new, empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// From seeds the builder with an existing context's fields, the Go
// analogue of TraceContext#toBuilder().
func From(c TraceContext) *Builder { return &Builder{c: c} }

func (b *Builder) TraceIDHigh(v int64) *Builder { b.c.traceIDHigh = v; return b }
func (b *Builder) TraceID(v int64) *Builder     { b.c.traceID = v; return b }
func (b *Builder) SpanID(v int64) *Builder      { b.c.spanID = v; return b }

// ParentID sets the parent span id. Passing 0 clears it (root span).
func (b *Builder) ParentID(v int64) *Builder {
	if v == 0 {
		b.c.hasParent = false
		b.c.parentID = 0
		return b
	}
	b.c.hasParent = true
	b.c.parentID = v
	return b
}

func (b *Builder) ClearParentID() *Builder { b.c.hasParent = false; b.c.parentID = 0; return b }

// Sampled sets an explicit tri-state sampling decision. Pass
// TriUndecided to clear it.
func (b *Builder) Sampled(v Tri) *Builder { b.c.sampled = v; return b }

// SampledBool is a convenience for Sampled(TriSampled) / Sampled(TriNotSampled).
func (b *Builder) SampledBool(v bool) *Builder {
	if v {
		b.c.sampled = TriSampled
	} else {
		b.c.sampled = TriNotSampled
	}
	return b
}

func (b *Builder) Debug(v bool) *Builder {
	b.c.debug = v
	if v {
		b.c.sampled = TriSampled
	}
	return b
}

func (b *Builder) Shared(v bool) *Builder { b.c.shared = v; return b }

func (b *Builder) Extra(extra []interface{}) *Builder {
	b.c.extra = extra
	return b
}

func (b *Builder) AddExtra(v interface{}) *Builder {
	b.c.extra = append(append([]interface{}{}, b.c.extra...), v)
	return b
}

// Build finalizes the context, forcing sampled=true when debug is set.
// It does not check that traceId and spanId are nonzero; a zero id
// passed to the builder is kept as is.
func (b *Builder) Build() TraceContext {
	c := b.c
	if c.debug {
		c.sampled = TriSampled
	}
	return c
}
