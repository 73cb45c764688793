// Package w3c implements the W3C tracestate header format
// (https://w3c.github.io/trace-context/#tracestate-header), isolating
// exactly one vendor's entry from the rest of the header so it can be
// read and rewritten without disturbing other tracing systems' state.
//
// Ported behaviorally from original_source/propagation/w3c's
// TracestateFormat.java: same scanning algorithm, same OWS handling,
// same duplicate-key rule (first match wins, later matches demote to
// "other entries").
package w3c

import "strings"

// Handler is invoked once, with the begin/end byte offsets (into
// tracestate) of this format's entry value. Returning false halts
// scanning early; whatever remains unscanned is preserved verbatim in
// the "other entries" result.
type Handler func(tracestate string, beginIndex, endIndex int) bool

// TracestateFormat parses and writes a single vendor's tracestate entry.
type TracestateFormat struct {
	key string
}

// New returns a TracestateFormat that isolates the entry keyed by key.
func New(key string) *TracestateFormat {
	return &TracestateFormat{key: key}
}

// Write renders "key=thisValue" followed by ",otherEntries" if
// otherEntries is non-empty. The spec (§4.3) recommends, but does not
// require, keeping the total under 512 characters; callers that care
// should check len(result) themselves.
func (f *TracestateFormat) Write(thisValue, otherEntries string) string {
	var b strings.Builder
	b.Grow(len(f.key) + 1 + len(thisValue) + 1 + len(otherEntries))
	b.WriteString(f.key)
	b.WriteByte('=')
	b.WriteString(thisValue)
	if otherEntries != "" {
		b.WriteByte(',')
		b.WriteString(otherEntries)
	}
	return b.String()
}

// ParseAndReturnOtherEntries scans tracestate for this format's key.
// Once found, handler is invoked with the value's begin/end offsets; if
// handler returns false, scanning stops immediately and everything not
// yet scanned is treated as already "other". All entries besides the
// first occurrence of this format's key are returned, comma-joined, as
// the second result; the second result is "" if no other entries exist.
//
// OWS (spaces and tabs) is trimmed around keys but not inside values.
// An empty or whitespace-only value (e.g. "foo=") is valid. A duplicate
// key: the first match is treated as "this entry"; subsequent
// occurrences of the same key are demoted to other entries, per the
// open question in spec.md §9 (observed upstream behavior, reproduced
// rather than guessed).
func (f *TracestateFormat) ParseAndReturnOtherEntries(tracestate string, handler Handler) string {
	var current strings.Builder
	var other strings.Builder
	haveOther := false
	matchedOnce := false

	length := len(tracestate)
	for i := 0; i < length; i++ {
		c := tracestate[i]
		// OWS is zero or more spaces or tabs: trim it wherever found.
		if c == ' ' || c == '\t' {
			continue
		}
		if c != '=' {
			current.WriteByte(c)
			continue
		}

		// c == '=': we reached a field name.
		i++ // skip '='; i == length here means an empty trailing value

		isThisEntry := !matchedOnce && current.String() == f.key
		name := current.String()
		current.Reset()

		if isThisEntry {
			matchedOnce = true
			nextComma := strings.IndexByte(tracestate[i:], ',')
			endIndex := length
			if nextComma >= 0 {
				endIndex = i + nextComma
			}
			if !handler(tracestate, i, endIndex) {
				if endIndex+1 < length {
					if haveOther {
						other.WriteByte(',')
					}
					haveOther = true
					other.WriteString(tracestate[endIndex+1:])
				}
				break
			}
			i = endIndex
			continue
		}

		if haveOther {
			other.WriteByte(',')
		}
		haveOther = true
		other.WriteString(name)
		other.WriteByte('=')
		for i < length && tracestate[i] != ',' {
			other.WriteByte(tracestate[i])
			i++
		}
		// i now sits on the comma (or length); the outer loop's i++
		// advances past it to the next entry, mirroring the Java
		// for-loop's implicit increment.
	}

	if !haveOther {
		return ""
	}
	return other.String()
}
