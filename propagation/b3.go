package propagation

import (
	"strings"

	"github.com/wangxiaojing2413/brave/internal/hex"
)

// B3SingleHeader is the header name used by the default single-header B3
// codec: "traceId-spanId-sampled-parentId", with the trailing fields
// optional. This is intentionally the minimal variant — the multi-header
// and binary B3 encodings, along with every other wire format, are
// treated as external collaborators per the tracer's scope (see
// SPEC_FULL.md's Non-goals); this codec exists only to give the
// Propagation factory something concrete to inject/extract by default.
const B3SingleHeader = "b3"

// NewB3Factory returns a Factory for the single-header B3 format. It
// supports the join convention (client and server share one span id)
// and does not require 128-bit trace ids.
func NewB3Factory[K any]() Factory[K] {
	return func(newKey func(name string) K) Propagation[K] {
		key := newKey(B3SingleHeader)
		return Propagation[K]{
			keys:           []K{key},
			supportsJoin:   true,
			requires128Bit: false,
			inject: func(ctx TraceContext, set func(K, string)) {
				set(key, writeB3Single(ctx))
			},
			extract: func(get func(K) string) Extracted {
				return parseB3Single(get(key))
			},
		}
	}
}

func writeB3Single(ctx TraceContext) string {
	var b strings.Builder
	b.WriteString(ctx.TraceIDString())
	b.WriteByte('-')
	b.WriteString(ctx.SpanIDString())
	if ctx.Debug() {
		b.WriteString("-d")
	} else if sampled, ok := ctx.Sampled(); ok {
		if sampled {
			b.WriteString("-1")
		} else {
			b.WriteString("-0")
		}
	}
	if parentID, ok := ctx.ParentID(); ok {
		b.WriteByte('-')
		b.WriteString(hex.Encode16(parentID))
	}
	return b.String()
}

// parseB3Single parses the single-header B3 format. A malformed or empty
// header yields the empty, undecided Extracted rather than an error, per
// the tracer's "invalid context input" policy.
func parseB3Single(header string) Extracted {
	if header == "" {
		return FromSamplingFlags(Empty)
	}
	if header == "0" {
		return FromSamplingFlags(NotSampled)
	}
	if header == "1" {
		return FromSamplingFlags(Sampled)
	}
	if header == "d" {
		return FromSamplingFlags(Debug)
	}

	parts := strings.Split(header, "-")
	if len(parts) < 2 {
		return FromSamplingFlags(Empty)
	}

	traceID, traceIDHigh, ok := parseTraceIDField(parts[0])
	if !ok {
		return FromSamplingFlags(Empty)
	}
	spanID, ok := hex.ParseUint64(parts[1])
	if !ok || spanID == 0 {
		return FromSamplingFlags(Empty)
	}

	b := NewBuilder().TraceIDHigh(traceIDHigh).TraceID(int64(traceID)).SpanID(int64(spanID))

	if len(parts) >= 3 {
		switch parts[2] {
		case "1":
			b.SampledBool(true)
		case "0":
			b.SampledBool(false)
		case "d":
			b.Debug(true)
		}
	}
	if len(parts) >= 4 {
		if parentID, ok := hex.ParseUint64(parts[3]); ok && parentID != 0 {
			b.ParentID(int64(parentID))
		}
	}
	return FromContext(b.Build())
}

func parseTraceIDField(s string) (low uint64, high int64, ok bool) {
	switch len(s) {
	case 16:
		v, ok := hex.ParseUint64(s)
		return v, 0, ok && v != 0
	case 32:
		hi, ok1 := hex.ParseUint64(s[:16])
		lo, ok2 := hex.ParseUint64(s[16:])
		return lo, int64(hi), ok1 && ok2 && lo != 0
	default:
		return 0, 0, false
	}
}
