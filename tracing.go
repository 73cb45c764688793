package brave

import (
	"sync"
	"sync/atomic"

	"github.com/wangxiaojing2413/brave/reporter"
	"github.com/wangxiaojing2413/brave/sampler"
	"go.uber.org/zap"
)

// SpanHandler is called with every finished span, before it reaches the
// reporter. Handlers registered via WithFinishedSpanHandler run in this
// role.
type SpanHandler = func(s FinishedSpan)

var (
	currentMu      sync.Mutex
	currentTracing atomic.Pointer[Tracing]
)

// Tracing is the process-wide lifecycle wrapper: it owns the noop flag
// every Tracer operation consults and registers itself as the "current"
// instance other packages can look up without threading a Tracing
// reference through their own construction.
type Tracing struct {
	tracer *Tracer
	noop   atomic.Bool
	closed atomic.Bool
	logger *zap.Logger
}

// NewTracing builds a Tracing (and its Tracer) from the given options
// and registers it as the current instance.
func NewTracing(opts ...Option) (*Tracing, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	ep := reporter.Endpoint{ServiceName: cfg.localServiceName}
	if cfg.localEndpoint != nil {
		ep = *cfg.localEndpoint
	}

	t := &Tracing{logger: cfg.logger}

	supportsJoin := true
	if cfg.propagation != nil {
		supportsJoin = cfg.propagation.SupportsJoin()
	}
	if cfg.supportsJoinOverride != nil {
		supportsJoin = *cfg.supportsJoinOverride
	}
	traceID128 := cfg.traceID128Bit
	if cfg.propagation != nil && cfg.propagation.Requires128BitTraceId() {
		traceID128 = true
	}

	t.tracer = &Tracer{
		tracing:             t,
		sampler:             sampler.Once(cfg.sampler, func(r interface{}) { cfg.logger.Error("brave: sampler panicked", zap.Any("recovered", r)) }),
		clock:               cfg.clock,
		idGen:               NewIdGenerator(),
		recorder:            newRecorder(ep),
		reporter:            cfg.reporter,
		currentTraceContext: cfg.currentTraceContext,
		supportsJoin:        supportsJoin,
		traceID128Bit:       traceID128,
		logger:              cfg.logger,
	}
	for _, h := range cfg.handlers {
		t.tracer.OnSpanFinished(h)
	}

	currentMu.Lock()
	currentTracing.Store(t)
	currentMu.Unlock()

	return t, nil
}

// Current returns the most recently built, non-closed Tracing instance,
// or nil if none has been built (or all have been closed).
func Current() *Tracing {
	currentMu.Lock()
	defer currentMu.Unlock()
	t := currentTracing.Load()
	if t == nil || t.closed.Load() {
		return nil
	}
	return t
}

// Tracer returns this instance's Tracer.
func (t *Tracing) Tracer() *Tracer { return t.tracer }

// SetNoop toggles the noop flag consulted by every span-creating
// Tracer entry point. When true, all of them yield Noop spans
// regardless of the sampler.
func (t *Tracing) SetNoop(noop bool) { t.noop.Store(noop) }

// IsNoop reports the current noop flag.
func (t *Tracing) IsNoop() bool { return t.noop.Load() }

// Close releases this instance, idempotently. If it was the registered
// current instance, Current() returns nil until a new Tracing is built.
func (t *Tracing) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.tracer.idGen.Close()
	currentMu.Lock()
	if currentTracing.Load() == t {
		currentTracing.Store(nil)
	}
	currentMu.Unlock()
	return nil
}
