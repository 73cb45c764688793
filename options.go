package brave

import (
	"github.com/wangxiaojing2413/brave/propagation"
	"github.com/wangxiaojing2413/brave/reporter"
	"github.com/wangxiaojing2413/brave/sampler"
	"go.uber.org/zap"
)

// PropagationCapabilities is the subset of propagation.Propagation[K]
// the tracer needs to know about, independent of the carrier's key
// type. propagation.Propagation[K] satisfies this for any K.
type PropagationCapabilities interface {
	SupportsJoin() bool
	Requires128BitTraceId() bool
}

type config struct {
	localServiceName     string
	localEndpoint        *reporter.Endpoint
	reporter             reporter.Reporter
	sampler              sampler.Sampler
	clock                Clock
	currentTraceContext  propagation.CurrentTraceContext
	propagation          PropagationCapabilities
	traceID128Bit        bool
	supportsJoinOverride *bool
	logger               *zap.Logger
	handlers             []SpanHandler
}

func defaultConfig() *config {
	return &config{
		localServiceName:    "unknown",
		reporter:            reporter.Nop,
		sampler:             sampler.Always,
		clock:               NewClock(nil),
		currentTraceContext: propagation.NewCurrentTraceContext(),
		logger:              zap.NewNop(),
	}
}

// Option configures a Tracing instance built by NewTracing.
type Option func(*config)

// WithLocalServiceName names the local endpoint attached to every
// reported span. Ignored if WithLocalEndpoint is also supplied.
// Defaults to "unknown".
func WithLocalServiceName(name string) Option {
	return func(c *config) { c.localServiceName = name }
}

// WithLocalEndpoint overrides the computed local endpoint entirely.
func WithLocalEndpoint(ep reporter.Endpoint) Option {
	return func(c *config) { c.localEndpoint = &ep }
}

// WithReporter sets the sink for finished spans.
func WithReporter(r reporter.Reporter) Option {
	return func(c *config) { c.reporter = r }
}

// WithSampler sets the sampling predicate.
func WithSampler(s sampler.Sampler) Option {
	return func(c *config) { c.sampler = s }
}

// WithClock sets the timestamp source.
func WithClock(clock Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithCurrentTraceContext sets the scope manager implementation.
func WithCurrentTraceContext(cc propagation.CurrentTraceContext) Option {
	return func(c *config) { c.currentTraceContext = cc }
}

// WithPropagationFactory sets the wire codec factory whose
// SupportsJoin/Requires128BitTraceId capabilities the tracer consults.
func WithPropagationFactory(p PropagationCapabilities) Option {
	return func(c *config) { c.propagation = p }
}

// WithTraceID128Bit enables 128-bit trace id generation.
func WithTraceID128Bit(enabled bool) Option {
	return func(c *config) { c.traceID128Bit = enabled }
}

// WithSupportsJoin overrides the propagation factory's join capability;
// false forces every join to become a child instead.
func WithSupportsJoin(supportsJoin bool) Option {
	return func(c *config) { c.supportsJoinOverride = &supportsJoin }
}

// WithLogger sets the structured logger used for the "logged and
// swallowed" error paths in spec §7 (sampler panics, reporter panics,
// handler panics). Mis-nested scope releases are not logged: the
// lenient CurrentTraceContext restores the predecessor silently and the
// strict one panics. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFinishedSpanHandler registers a post-finish interceptor applied
// before the reporter. Handlers run in registration order and are
// insulated from each other's panics the same way the reporter is.
func WithFinishedSpanHandler(h SpanHandler) Option {
	return func(c *config) { c.handlers = append(c.handlers, h) }
}
