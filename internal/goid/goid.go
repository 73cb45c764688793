// Package goid extracts the calling goroutine's numeric id from its stack
// trace. It exists solely to back a goroutine-local current-span stack
// (propagation.CurrentTraceContext) in a language with no native
// thread-local facility. Parsing the stack header on every call is not
// free; callers on the tracer's hot path should treat this as a leaf
// primitive, not something to call more than once per scope operation.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the id of the calling goroutine, parsed out of the
// "goroutine N [state]:" header that runtime.Stack always writes first.
func Current() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}
	rest := buf[len(prefix):]
	end := bytes.IndexByte(rest, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(rest[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
