package propagation

// TraceIdContext is a partial context carrying only trace identifiers
// plus sampling flags — enough to start a new span under an existing
// trace id without a parent span id.
type TraceIdContext struct {
	traceIDHigh int64
	traceID     int64
	flags       SamplingFlags
}

func NewTraceIdContext(traceIDHigh, traceID int64, flags SamplingFlags) TraceIdContext {
	return TraceIdContext{traceIDHigh: traceIDHigh, traceID: traceID, flags: flags}
}

func (t TraceIdContext) TraceIDHigh() int64      { return t.traceIDHigh }
func (t TraceIdContext) TraceID() int64          { return t.traceID }
func (t TraceIdContext) Flags() SamplingFlags    { return t.flags }
func (t TraceIdContext) Is128Bit() bool          { return t.traceIDHigh != 0 }

// kind tags which of the three variants an Extracted value holds.
type kind uint8

const (
	kindFlags kind = iota
	kindTraceID
	kindContext
)

// Extracted is TraceContextOrSamplingFlags: a tagged sum of exactly one
// of {full TraceContext, TraceIdContext, bare SamplingFlags}, plus
// extra propagation payloads carried independently of which variant is
// present.
type Extracted struct {
	k        kind
	context  TraceContext
	traceID  TraceIdContext
	flags    SamplingFlags
	extra    []interface{}
}

// FromContext wraps a full TraceContext.
func FromContext(c TraceContext) Extracted { return Extracted{k: kindContext, context: c} }

// FromTraceIdContext wraps a TraceIdContext.
func FromTraceIdContext(t TraceIdContext) Extracted { return Extracted{k: kindTraceID, traceID: t} }

// FromSamplingFlags wraps bare SamplingFlags.
func FromSamplingFlags(f SamplingFlags) Extracted { return Extracted{k: kindFlags, flags: f} }

// WithExtra returns a copy of e carrying the given extra payloads.
func (e Extracted) WithExtra(extra []interface{}) Extracted {
	e.extra = extra
	return e
}

// AddExtra returns a copy of e with v appended to its extra payloads.
func (e Extracted) AddExtra(v interface{}) Extracted {
	e.extra = append(append([]interface{}{}, e.extra...), v)
	return e
}

// Extra returns the propagation-plugin payloads attached independently
// of the variant.
func (e Extracted) Extra() []interface{} { return e.extra }

// TraceContext returns the full context and true, if that's the variant
// held.
func (e Extracted) TraceContext() (TraceContext, bool) {
	if e.k != kindContext {
		return TraceContext{}, false
	}
	return e.context, true
}

// TraceIdContext returns the trace-id-only variant and true, if held.
func (e Extracted) TraceIdContext() (TraceIdContext, bool) {
	if e.k != kindTraceID {
		return TraceIdContext{}, false
	}
	return e.traceID, true
}

// SamplingFlags returns the bare-flags variant and true, if held.
func (e Extracted) SamplingFlags() (SamplingFlags, bool) {
	if e.k != kindFlags {
		return SamplingFlags{}, false
	}
	return e.flags, true
}

// IsEmpty reports whether this is the bare, undecided SamplingFlags
// variant with no extra payloads — the "nothing extracted" case.
func (e Extracted) IsEmpty() bool {
	return e.k == kindFlags && e.flags.IsEmpty() && len(e.extra) == 0
}
