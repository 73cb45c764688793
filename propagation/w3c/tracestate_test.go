package w3c

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteWithAndWithoutOtherEntries(t *testing.T) {
	f := New("congo")
	assert.Equal(t, "congo=t61rcWkgMzE", f.Write("t61rcWkgMzE", ""))
	assert.Equal(t, "congo=t61rcWkgMzE,rojo=00f067aa0ba902b7", f.Write("t61rcWkgMzE", "rojo=00f067aa0ba902b7"))
}

func TestParseFindsOwnEntryAmongOthers(t *testing.T) {
	f := New("congo")
	var captured string
	other := f.ParseAndReturnOtherEntries("rojo=00f067aa0ba902b7,congo=t61rcWkgMzE,other=1",
		func(tracestate string, begin, end int) bool {
			captured = tracestate[begin:end]
			return true
		})

	assert.Equal(t, "t61rcWkgMzE", captured)
	assert.Equal(t, "rojo=00f067aa0ba902b7,other=1", other)
}

func TestParseOwnEntryOnly(t *testing.T) {
	f := New("congo")
	var captured string
	other := f.ParseAndReturnOtherEntries("congo=t61rcWkgMzE",
		func(tracestate string, begin, end int) bool {
			captured = tracestate[begin:end]
			return true
		})

	assert.Equal(t, "t61rcWkgMzE", captured)
	assert.Equal(t, "", other)
}

func TestParseNoOwnEntry(t *testing.T) {
	f := New("congo")
	called := false
	other := f.ParseAndReturnOtherEntries("rojo=00f067aa0ba902b7,other=1",
		func(string, int, int) bool { called = true; return true })

	assert.False(t, called)
	assert.Equal(t, "rojo=00f067aa0ba902b7,other=1", other)
}

func TestParseTrimsOWSAroundKeys(t *testing.T) {
	f := New("congo")
	var captured string
	other := f.ParseAndReturnOtherEntries(" congo=val , rojo=abc ",
		func(tracestate string, begin, end int) bool {
			captured = tracestate[begin:end]
			return true
		})
	assert.Equal(t, "val ", captured) // trailing space is part of the value, not trimmed
	assert.Contains(t, other, "rojo=abc")
}

func TestParseDuplicateKeyFirstWins(t *testing.T) {
	f := New("congo")
	var captured string
	other := f.ParseAndReturnOtherEntries("congo=first,congo=second",
		func(tracestate string, begin, end int) bool {
			captured = tracestate[begin:end]
			return true
		})

	assert.Equal(t, "first", captured)
	assert.Equal(t, "congo=second", other)
}

func TestParseEmptyValueIsValid(t *testing.T) {
	f := New("congo")
	var captured string
	found := false
	f.ParseAndReturnOtherEntries("congo=",
		func(tracestate string, begin, end int) bool {
			found = true
			captured = tracestate[begin:end]
			return true
		})
	assert.True(t, found)
	assert.Equal(t, "", captured)
}

func TestParseHandlerFalseStopsScanning(t *testing.T) {
	f := New("congo")
	other := f.ParseAndReturnOtherEntries("congo=val,rojo=abc,third=1",
		func(string, int, int) bool { return false })
	// Scanning stopped at the handler's return; everything after congo's
	// entry is kept verbatim as "other".
	assert.Equal(t, "rojo=abc,third=1", other)
}
