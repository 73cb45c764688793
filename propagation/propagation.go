package propagation

// Setter writes a header value keyed by K into a carrier of type C.
type Setter[C any, K any] func(carrier C, key K, value string)

// Getter reads a header value keyed by K from a carrier of type C. It
// returns "" if the header is absent.
type Getter[C any, K any] func(carrier C, key K) string

// Propagation is a header codec factory bound to a key type K. It
// exposes the header names it owns and builds injectors/extractors over
// an arbitrary carrier type via the Setter/Getter the caller supplies.
type Propagation[K any] struct {
	keys               []K
	supportsJoin       bool
	requires128Bit     bool
	inject             func(ctx TraceContext, set func(K, string))
	extract            func(get func(K) string) Extracted
}

// Keys returns the header names this propagation owns.
func (p Propagation[K]) Keys() []K { return append([]K{}, p.keys...) }

// SupportsJoin reports whether this wire format carries the
// single-span-id join convention. When false, the tracer must treat a
// join as a new child instead.
func (p Propagation[K]) SupportsJoin() bool { return p.supportsJoin }

// Requires128BitTraceId reports whether this format only carries
// 128-bit trace ids.
func (p Propagation[K]) Requires128BitTraceId() bool { return p.requires128Bit }

// Injector builds a function that writes ctx into carrier using set to
// place each header.
func Injector[C any, K any](p Propagation[K], set Setter[C, K]) func(ctx TraceContext, carrier C) {
	return func(ctx TraceContext, carrier C) {
		p.inject(ctx, func(k K, v string) { set(carrier, k, v) })
	}
}

// Extractor builds a function that reads a carrier via get and returns
// the resulting TraceContextOrSamplingFlags.
func Extractor[C any, K any](p Propagation[K], get Getter[C, K]) func(carrier C) Extracted {
	return func(carrier C) Extracted {
		return p.extract(func(k K) string { return get(carrier, k) })
	}
}

// Factory builds a Propagation[K] for a caller-chosen header key type.
// This is the Go analogue of Brave's Propagation.Factory / KeyFactory
// pair, collapsed into a single generic constructor since Go key types
// are compile-time, not runtime, values.
type Factory[K any] func(newKey func(name string) K) Propagation[K]
