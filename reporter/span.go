// Package reporter defines the sink finished spans are handed to and
// provides in-process implementations: a buffered queue (adapted from
// the teacher's collector.go) and a Prometheus-instrumented wrapper.
// Network transports (HTTP/Kafka to a collector service) are out of
// scope; that is the concrete reporter a deployment plugs in downstream
// of this package.
package reporter

// Kind mirrors zipkin2.Span.Kind: the span's position in an RPC.
type Kind string

const (
	KindUnset    Kind = ""
	KindClient   Kind = "CLIENT"
	KindServer   Kind = "SERVER"
	KindProducer Kind = "PRODUCER"
	KindConsumer Kind = "CONSUMER"
)

// Endpoint identifies the local (or remote) service that produced a
// span.
type Endpoint struct {
	ServiceName string `json:"serviceName,omitempty"`
	IPv4        string `json:"ipv4,omitempty"`
	IPv6        string `json:"ipv6,omitempty"`
	Port        uint16 `json:"port,omitempty"`
}

// Annotation is a timestamped event within a span, in insertion order.
type Annotation struct {
	Timestamp int64  `json:"timestamp"`
	Value     string `json:"value"`
}

// Span is the reporter's input structure: the total conversion of a
// finished MutableSpan, all required fields defaulted so encoding never
// needs to special-case a missing value.
//
//nolint:govet // field order kept close to zipkin2.Span for readability
type Span struct {
	TraceID        string            `json:"traceId"`
	ID             string            `json:"id"`
	ParentID       string            `json:"parentId,omitempty"`
	Name           string            `json:"name,omitempty"`
	Kind           Kind              `json:"kind,omitempty"`
	Timestamp      int64             `json:"timestamp,omitempty"`
	Duration       int64             `json:"duration,omitempty"`
	Debug          bool              `json:"debug,omitempty"`
	Shared         bool              `json:"shared,omitempty"`
	LocalEndpoint  *Endpoint         `json:"localEndpoint,omitempty"`
	RemoteEndpoint *Endpoint         `json:"remoteEndpoint,omitempty"`
	Annotations    []Annotation      `json:"annotations,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
	Err            string            `json:"-"`
}

// MarshalToDiagnosticJSON renders exactly the fields and key ordering
// the tracer's diagnostic String() contract (spec §8, S5) requires: a
// minimal object with traceId, id, timestamp, localEndpoint in that
// order, matching Go's encoding/json for the struct tag order above but
// spelled out explicitly since the diagnostic string must be
// byte-for-byte stable regardless of json package version behavior.
func (s Span) MarshalToDiagnosticJSON() string {
	b := make([]byte, 0, 128)
	b = append(b, `{"traceId":"`...)
	b = append(b, s.TraceID...)
	b = append(b, `","id":"`...)
	b = append(b, s.ID...)
	b = append(b, `"`...)
	if s.Timestamp != 0 {
		b = append(b, `,"timestamp":`...)
		b = appendInt(b, s.Timestamp)
	}
	if s.LocalEndpoint != nil && s.LocalEndpoint.ServiceName != "" {
		b = append(b, `,"localEndpoint":{"serviceName":"`...)
		b = append(b, s.LocalEndpoint.ServiceName...)
		b = append(b, `"}`...)
	}
	b = append(b, '}')
	return string(b)
}

func appendInt(b []byte, v int64) []byte {
	if v == 0 {
		return append(b, '0')
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		tmp[i] = '-'
	}
	return append(b, tmp[i:]...)
}

// Reporter is a sink for finished spans. Implementations must not panic
// back into the tracer; the tracer treats a reporter that does as a
// programmer error in the reporter, catches it, and discards the span.
type Reporter interface {
	Report(s Span)
}

// Func adapts a plain function to a Reporter.
type Func func(s Span)

func (f Func) Report(s Span) { f(s) }

// Nop discards every span. Useful as a config default before a real
// reporter is wired in.
var Nop Reporter = Func(func(Span) {})
