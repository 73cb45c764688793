// Package brave provides a distributed-tracing client library: in-process
// instrumentation that records causally-linked timed operations (spans)
// across service boundaries and forwards finished spans to a reporter.
//
// Core Components:
//   - Tracing: process-wide lifecycle, holds the noop flag and the
//     currently-registered instance.
//   - Tracer: mints trace/span identifiers under a sampling decision and
//     materializes spans from local work or decoded remote context.
//   - Span: a Real span (backed by the recorder) or a Noop span (valid
//     ids, no recording).
//   - Recorder: the in-flight span registry, keyed by context.
//
// Basic Usage:
//
//	tracing, err := brave.NewTracing(brave.WithLocalServiceName("my-service"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer tracing.Close()
//
//	tracer := tracing.Tracer()
//	span := tracer.NewTrace()
//	defer span.Finish()
//	span.Tag("user.id", "123")
//
// Thread Safety:
//
// Tracer, Recorder and Reporter implementations are safe for concurrent
// use by multiple goroutines. A Span's mutators may be called from more
// than one goroutine; each field is guarded internally, but the tracer
// never imposes an ordering across goroutines, so the order of
// concurrent mutations is whatever the callers' own synchronization
// produces.
//
// Sampling and Propagation:
//
// See the sampler and propagation subpackages for the sampling predicate
// and the wire-context types (TraceContext, SamplingFlags,
// TraceContextOrSamplingFlags) and codecs (B3, W3C tracestate).
package brave
