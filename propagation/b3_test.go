package propagation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func b3Propagation() Propagation[string] {
	return NewB3Factory[string]()(func(name string) string { return name })
}

func TestB3FactoryCapabilities(t *testing.T) {
	p := b3Propagation()
	assert.True(t, p.SupportsJoin())
	assert.False(t, p.Requires128BitTraceId())
	assert.Equal(t, []string{B3SingleHeader}, p.Keys())
}

func TestB3WriteAndParseRoundTripSampled(t *testing.T) {
	p := b3Propagation()
	carrier := map[string]string{}
	inject := Injector[map[string]string, string](p, func(c map[string]string, k, v string) { c[k] = v })
	extract := Extractor[map[string]string, string](p, func(c map[string]string, k string) string { return c[k] })

	ctx := NewBuilder().TraceID(1).SpanID(10).SampledBool(true).Build()
	inject(ctx, carrier)
	assert.Equal(t, "0000000000000001-000000000000000a-1", carrier[B3SingleHeader])

	extracted := extract(carrier)
	got, ok := extracted.TraceContext()
	assert.True(t, ok)
	assert.True(t, got.Equal(ctx))
}

func TestB3WriteWithDebugAndParent(t *testing.T) {
	ctx := NewBuilder().TraceID(1).SpanID(10).ParentID(9).Debug(true).Build()
	got := writeB3Single(ctx)
	assert.Equal(t, "0000000000000001-000000000000000a-d-0000000000000009", got)
}

func TestB3ParseShorthandValues(t *testing.T) {
	for header, want := range map[string]SamplingFlags{
		"":  Empty,
		"0": NotSampled,
		"1": Sampled,
		"d": Debug,
	} {
		extracted := parseB3Single(header)
		flags, ok := extracted.SamplingFlags()
		assert.True(t, ok, "header %q", header)
		assert.Equal(t, want, flags, "header %q", header)
	}
}

func TestB3Parse128BitTraceID(t *testing.T) {
	header := "00000000000000020000000000000001-000000000000000a-1"
	extracted := parseB3Single(header)
	ctx, ok := extracted.TraceContext()
	assert.True(t, ok)
	assert.Equal(t, int64(2), ctx.TraceIDHigh())
	assert.Equal(t, int64(1), ctx.TraceID())
	assert.True(t, ctx.Is128Bit())
}

func TestB3ParseMalformedYieldsEmpty(t *testing.T) {
	for _, header := range []string{"nothex", "0000000000000001", "0000000000000001-"} {
		extracted := parseB3Single(header)
		assert.True(t, extracted.IsEmpty(), "header %q should parse to empty", header)
	}
}
