package brave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewClockNilDefaultsToReal(t *testing.T) {
	c := NewClock(nil)
	before := time.Now().UnixMicro()
	got := c.Now()
	after := time.Now().UnixMicro()
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}

func TestNewClockRealClockSuccessiveReadsDoNotDecrease(t *testing.T) {
	c := NewClock(nil)
	a := c.Now()
	b := c.Now()
	assert.LessOrEqual(t, a, b)
}
