package brave

import (
	"fmt"
	"strings"
	"sync"

	"github.com/wangxiaojing2413/brave/propagation"
	"github.com/wangxiaojing2413/brave/reporter"
	"github.com/wangxiaojing2413/brave/sampler"
	"go.uber.org/zap"
)

// FinishedSpan is the reporter's input structure — a finished span, all
// required fields defaulted.
type FinishedSpan = reporter.Span

type handlerEntry struct {
	id      uint64
	handler SpanHandler
}

// Tracer mints trace/span identifiers under a sampling decision,
// materializes spans (Real or Noop) from local work or decoded remote
// context, tracks the current span per goroutine, and routes finished
// spans to a reporter. See spec §4.6.
//
//nolint:govet // field order kept for readability over memory packing
type Tracer struct {
	tracing             *Tracing
	sampler             sampler.Sampler
	clock               Clock
	idGen               *IdGenerator
	recorder            *Recorder
	reporter            reporter.Reporter
	currentTraceContext propagation.CurrentTraceContext
	supportsJoin        bool
	traceID128Bit       bool
	logger              *zap.Logger

	handlersMu sync.RWMutex
	handlers   []handlerEntry
	nextID     uint64
}

// Clock returns the tracer's timestamp source.
func (t *Tracer) Clock() Clock { return t.clock }

// Sampler returns the tracer's sampling predicate.
func (t *Tracer) Sampler() sampler.Sampler { return t.sampler }

// WithSampler returns a new Tracer sharing everything except the
// sampler, per the Java original's Tracer#withSampler (SPEC_FULL.md's
// SUPPLEMENTED FEATURES #1): it does not mutate the receiver.
func (t *Tracer) WithSampler(s sampler.Sampler) *Tracer {
	clone := *t
	clone.sampler = s
	return &clone
}

// OnSpanFinished registers a handler invoked on every finished span
// before the reporter, returning an id RemoveSpanHandler can use to
// unregister it later.
func (t *Tracer) OnSpanFinished(h SpanHandler) uint64 {
	if h == nil {
		return 0
	}
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, handlerEntry{id: id, handler: h})
	return id
}

// RemoveSpanHandler unregisters a handler previously returned by
// OnSpanFinished.
func (t *Tracer) RemoveSpanHandler(id uint64) {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	for i, e := range t.handlers {
		if e.id == id {
			t.handlers = append(t.handlers[:i], t.handlers[i+1:]...)
			return
		}
	}
}

// reportFinished runs the finished-span handlers, then the reporter,
// outside any recorder lock, catching and logging any panic from either
// (spec §7: reporter/handler exceptions are logged and swallowed; the
// span is considered reported regardless).
func (t *Tracer) reportFinished(s FinishedSpan) {
	t.handlersMu.RLock()
	handlers := append([]handlerEntry{}, t.handlers...)
	t.handlersMu.RUnlock()

	for _, e := range handlers {
		t.safeCall(func() { e.handler(s) }, "finished-span handler")
	}
	t.safeCall(func() { t.reporter.Report(s) }, "reporter")
}

func (t *Tracer) safeCall(fn func(), what string) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("brave: "+what+" panicked", zap.Any("recovered", r))
		}
	}()
	fn()
}

func (t *Tracer) isGloballyNoop() bool {
	return t.tracing != nil && t.tracing.IsNoop()
}

func (t *Tracer) newContextBuilder() *propagation.Builder {
	if t.traceID128Bit {
		high, low := t.idGen.NextTraceID128()
		return propagation.NewBuilder().TraceIDHigh(high).TraceID(low).SpanID(t.idGen.NextSpanID())
	}
	return propagation.NewBuilder().TraceID(t.idGen.NextTraceID64()).SpanID(t.idGen.NextSpanID())
}

func (t *Tracer) toSpanFor(ctx propagation.TraceContext, noop bool) Span {
	if noop {
		return newNoopSpan(ctx)
	}
	return newRealSpan(t, ctx)
}

// NewTrace starts a new root span, consulting the sampler unless the
// tracer is globally noop.
func (t *Tracer) NewTrace() Span {
	return t.NewTraceWithFlags(propagation.Empty)
}

// NewTraceWithFlags starts a new root span honoring explicit sampling
// flags, per the decision table in spec §4.6.
func (t *Tracer) NewTraceWithFlags(flags propagation.SamplingFlags) Span {
	b := t.newContextBuilder()

	if t.isGloballyNoop() {
		return newNoopSpan(b.Build())
	}

	switch {
	case flags.IsDebug():
		b.Debug(true)
		return newRealSpan(t, b.Build())
	case flagsSampledFalse(flags):
		return newNoopSpan(b.SampledBool(false).Build())
	case flagsSampledTrue(flags):
		b.SampledBool(true)
		return newRealSpan(t, b.Build())
	default: // undecided: consult the sampler, sticky on this new id
		sampled := t.sampler.IsSampled(b.Build().TraceID())
		b.SampledBool(sampled)
		if !sampled {
			return newNoopSpan(b.Build())
		}
		return newRealSpan(t, b.Build())
	}
}

func flagsSampledFalse(f propagation.SamplingFlags) bool {
	sampled, ok := f.SampledOK()
	return ok && !sampled
}

func flagsSampledTrue(f propagation.SamplingFlags) bool {
	sampled, ok := f.SampledOK()
	return ok && sampled
}

// JoinSpan asserts that ctx belongs to an ongoing trace whose span id
// should be shared, per spec §4.6. If the tracer's propagation does not
// support the join convention, this degrades to NewChild instead.
func (t *Tracer) JoinSpan(ctx propagation.TraceContext) Span {
	if t.isGloballyNoop() {
		return newNoopSpan(ctx)
	}
	if !t.supportsJoin {
		return t.NewChild(ctx)
	}

	ctx = t.ensureSampled(ctx)
	sampled, _ := ctx.Sampled()
	if !sampled {
		return newNoopSpan(ctx)
	}
	shared := propagation.From(ctx).Shared(true).Build()
	return newRealSpan(t, shared)
}

// NewChild always allocates a new span id, per spec §4.6.
func (t *Tracer) NewChild(parent propagation.TraceContext) Span {
	if t.isGloballyNoop() {
		return newNoopSpan(t.childContext(parent, parent.SampledTri()))
	}
	if sampled, ok := parent.Sampled(); ok && !sampled {
		return newNoopSpan(t.childContext(parent, propagation.TriNotSampled))
	}

	decided := parent
	if _, ok := parent.Sampled(); !ok {
		sampled := t.sampler.IsSampled(parent.TraceID())
		decided = propagation.From(parent).SampledBool(sampled).Build()
	}
	if sampled, _ := decided.Sampled(); !sampled {
		return newNoopSpan(t.childContext(decided, propagation.TriNotSampled))
	}
	return newRealSpan(t, t.childContext(decided, propagation.TriSampled))
}

func (t *Tracer) childContext(parent propagation.TraceContext, sampled propagation.Tri) propagation.TraceContext {
	b := propagation.NewBuilder().
		TraceIDHigh(parent.TraceIDHigh()).
		TraceID(parent.TraceID()).
		ParentID(parent.SpanID()).
		SpanID(t.idGen.NextSpanID()).
		Sampled(sampled).
		Shared(false).
		Debug(parent.Debug()).
		Extra(parent.Extra())
	return b.Build()
}

// ensureSampled resolves an undecided sampling tri-state on ctx via the
// sticky sampler, otherwise returns ctx unchanged.
func (t *Tracer) ensureSampled(ctx propagation.TraceContext) propagation.TraceContext {
	if _, ok := ctx.Sampled(); ok {
		return ctx
	}
	sampled := t.sampler.IsSampled(ctx.TraceID())
	return propagation.From(ctx).SampledBool(sampled).Build()
}

// ToSpan lifts a raw context into a Span without modifying identifiers.
// Idempotent w.r.t. repeated calls with the same ctx: both calls resolve
// to the same in-flight mutableSpan via the recorder.
func (t *Tracer) ToSpan(ctx propagation.TraceContext) Span {
	if t.isGloballyNoop() {
		return newNoopSpan(ctx)
	}
	if sampled, ok := ctx.Sampled(); ok && !sampled {
		return newNoopSpan(ctx)
	}
	return newRealSpan(t, ctx)
}

// NextSpan dispatches on the extracted variant per the decision table in
// spec §4.6.
func (t *Tracer) NextSpan(extracted propagation.Extracted) Span {
	if full, ok := extracted.TraceContext(); ok {
		full = full.WithExtraAppended(extracted.Extra())
		return t.JoinSpan(full)
	}
	if traceIDCtx, ok := extracted.TraceIdContext(); ok {
		b := propagation.NewBuilder().
			TraceIDHigh(traceIDCtx.TraceIDHigh()).
			TraceID(traceIDCtx.TraceID()).
			SpanID(t.idGen.NextSpanID()).
			Extra(extracted.Extra())
		flags := traceIDCtx.Flags()
		return t.spanFromFlags(b, flags)
	}

	flags, _ := extracted.SamplingFlags()
	current, hasCurrent := t.currentTraceContext.Get()

	if !hasCurrent {
		span := t.NewTraceWithFlags(flags)
		return t.appendExtraToSpan(span, extracted.Extra())
	}
	// A decision carried by the extracted flags overrides current's.
	if flags.IsDebug() {
		current = propagation.From(current).Debug(true).Build()
	} else if sampled, ok := flags.SampledOK(); ok {
		current = propagation.From(current).SampledBool(sampled).Build()
	}
	return t.newChildWithExtra(current, extracted.Extra())
}

func (t *Tracer) spanFromFlags(b *propagation.Builder, flags propagation.SamplingFlags) Span {
	if t.isGloballyNoop() {
		return newNoopSpan(b.Build())
	}
	if flags.IsDebug() {
		b.Debug(true)
		return newRealSpan(t, b.Build())
	}
	if sampled, ok := flags.SampledOK(); ok {
		b.SampledBool(sampled)
		if !sampled {
			return newNoopSpan(b.Build())
		}
		return newRealSpan(t, b.Build())
	}
	sampled := t.sampler.IsSampled(b.Build().TraceID())
	b.SampledBool(sampled)
	if !sampled {
		return newNoopSpan(b.Build())
	}
	return newRealSpan(t, b.Build())
}

func (t *Tracer) newChildWithExtra(parent propagation.TraceContext, extra []interface{}) Span {
	parent = parent.WithExtraAppended(extra)
	return t.NewChild(parent)
}

func (t *Tracer) appendExtraToSpan(span Span, extra []interface{}) Span {
	if len(extra) == 0 {
		return span
	}
	ctx := span.Context().WithExtraAppended(extra)
	if span.IsNoop() {
		return newNoopSpan(ctx)
	}
	return newRealSpan(t, ctx)
}

// WithSpanInScope returns a Scope that installs span's context (or
// clears the current context, if span is nil) as current; releasing the
// scope restores whatever was current before.
func (t *Tracer) WithSpanInScope(span Span) propagation.Scope {
	if span == nil {
		return t.currentTraceContext.NewScope(nil)
	}
	ctx := span.Context()
	return t.currentTraceContext.NewScope(&ctx)
}

// CurrentSpan lifts the top-of-stack context via ToSpan, or returns nil
// if no scope is active.
func (t *Tracer) CurrentSpan() Span {
	ctx, ok := t.currentTraceContext.Get()
	if !ok {
		return nil
	}
	return t.ToSpan(ctx)
}

// String renders the diagnostic contract in spec §8: current-span ids
// when in scope, otherwise in-flight span summaries, the noop flag when
// set, and always the reporter's own String().
func (t *Tracer) String() string {
	var b strings.Builder
	b.WriteString("Tracer{")

	wroteField := false
	writeField := func(s string) {
		if wroteField {
			b.WriteString(", ")
		}
		b.WriteString(s)
		wroteField = true
	}

	if t.isGloballyNoop() {
		writeField("noop=true")
	} else if ctx, ok := t.currentTraceContext.Get(); ok {
		writeField(fmt.Sprintf("currentSpan=%s", ctx.String()))
	} else if inFlight := t.recorder.snapshot(); len(inFlight) > 0 {
		parts := make([]string, len(inFlight))
		for i, m := range inFlight {
			parts[i] = m.snapshotToDiagnosticSpan(t.recorder.localEndpoint).MarshalToDiagnosticJSON()
		}
		writeField("inFlight=[" + strings.Join(parts, ", ") + "]")
	}

	writeField(fmt.Sprintf("reporter=%v", t.reporter))
	b.WriteString("}")
	return b.String()
}
