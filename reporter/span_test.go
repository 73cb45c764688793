package reporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarshalToDiagnosticJSONMinimal(t *testing.T) {
	s := Span{TraceID: "0000000000000001", ID: "000000000000000a"}
	assert.Equal(t, `{"traceId":"0000000000000001","id":"000000000000000a"}`, s.MarshalToDiagnosticJSON())
}

func TestMarshalToDiagnosticJSONWithTimestampAndEndpoint(t *testing.T) {
	s := Span{
		TraceID:       "0000000000000001",
		ID:            "000000000000000a",
		Timestamp:     1,
		LocalEndpoint: &Endpoint{ServiceName: "my-service"},
	}
	want := `{"traceId":"0000000000000001","id":"000000000000000a","timestamp":1,"localEndpoint":{"serviceName":"my-service"}}`
	assert.Equal(t, want, s.MarshalToDiagnosticJSON())
}

func TestMarshalToDiagnosticJSONOmitsEmptyServiceName(t *testing.T) {
	s := Span{
		TraceID:       "0000000000000001",
		ID:            "000000000000000a",
		LocalEndpoint: &Endpoint{},
	}
	assert.Equal(t, `{"traceId":"0000000000000001","id":"000000000000000a"}`, s.MarshalToDiagnosticJSON())
}

func TestFuncReporterAdapts(t *testing.T) {
	var got Span
	r := Func(func(s Span) { got = s })
	r.Report(Span{ID: "x"})
	assert.Equal(t, "x", got.ID)
}

func TestNopDiscardsWithoutPanic(t *testing.T) {
	assert.NotPanics(t, func() { Nop.Report(Span{}) })
}

func TestAppendIntNegativeAndZero(t *testing.T) {
	assert.Equal(t, "0", string(appendInt(nil, 0)))
	assert.Equal(t, "-42", string(appendInt(nil, -42)))
	assert.Equal(t, "1234567890", string(appendInt(nil, 1234567890)))
}
