package brave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSpanIDNonzero(t *testing.T) {
	g := NewIdGenerator()
	defer g.Close()

	for i := 0; i < 1000; i++ {
		assert.NotZero(t, g.NextSpanID())
	}
}

func TestNextTraceID64Nonzero(t *testing.T) {
	g := NewIdGenerator()
	defer g.Close()

	for i := 0; i < 1000; i++ {
		assert.NotZero(t, g.NextTraceID64())
	}
}

func TestNextTraceID128BothHalvesNonzero(t *testing.T) {
	g := NewIdGenerator()
	defer g.Close()

	for i := 0; i < 1000; i++ {
		high, low := g.NextTraceID128()
		assert.NotZero(t, high)
		assert.NotZero(t, low)
	}
}

func TestIDPoolFallsBackToFactoryWhenDrained(t *testing.T) {
	calls := 0
	factory := func() int64 {
		calls++
		return int64(calls)
	}
	p := newIDPool(1, factory)
	defer p.close()

	ids := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		ids[p.get()] = true
	}
	assert.Greater(t, calls, 1)
	assert.NotContains(t, ids, int64(0))
}

func TestIDPoolCloseIsIdempotent(t *testing.T) {
	p := newIDPool(4, func() int64 { return 7 })
	p.close()
	assert.NotPanics(t, p.close, "double close must be safe")
}

func TestIDPool128CloseIsIdempotent(t *testing.T) {
	p := newIDPool128(4, func() (int64, int64) { return 1, 2 })
	p.close()
	assert.NotPanics(t, p.close)
}

func TestIdGeneratorCloseIsIdempotent(t *testing.T) {
	g := NewIdGenerator()
	assert.NotPanics(t, g.Close)
	assert.NotPanics(t, g.Close, "Close is safe to call once; a second call must not panic either")
}
