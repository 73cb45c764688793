package reporter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumented wraps a Reporter, counting reported and dropped spans via
// Prometheus so an operator can alert on reporter health without
// scraping application logs.
type Instrumented struct {
	delegate Reporter
	reported *prometheus.CounterVec
	dropped  prometheus.Counter
}

// NewInstrumented wraps delegate, registering its counters against reg.
// Passing nil for reg leaves the counters unregistered.
func NewInstrumented(delegate Reporter, reg prometheus.Registerer) *Instrumented {
	factory := promauto.With(reg)
	return &Instrumented{
		delegate: delegate,
		reported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brave_spans_reported_total",
			Help: "Finished spans handed to the reporter, by kind.",
		}, []string{"kind"}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "brave_spans_dropped_total",
			Help: "Finished spans dropped before reaching the delegate reporter.",
		}),
	}
}

// Report implements Reporter, recording the span before delegating. If
// the delegate panics, the panic is treated the same as any other
// reporter panic per §7 — it must not propagate back into the tracer's
// finish path, so callers should invoke Report through the tracer's
// safe-call wrapper rather than directly.
func (i *Instrumented) Report(s Span) {
	kind := string(s.Kind)
	if kind == "" {
		kind = "local"
	}
	i.reported.WithLabelValues(kind).Inc()
	i.delegate.Report(s)
}

// DroppedInc increments the dropped-span counter. Exposed so a queueing
// reporter's own drop path (e.g. QueueReporter.DroppedCount) can be
// mirrored into the same Prometheus registry when both are composed.
func (i *Instrumented) DroppedInc() { i.dropped.Inc() }

func (i *Instrumented) String() string {
	if s, ok := i.delegate.(interface{ String() string }); ok {
		return "Instrumented{" + s.String() + "}"
	}
	return "Instrumented{}"
}
