package propagation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplingFlagsWellKnownValues(t *testing.T) {
	sampled, ok := Empty.SampledOK()
	assert.False(t, ok)
	assert.False(t, sampled)
	assert.True(t, Empty.IsEmpty())

	sampled, ok = Sampled.SampledOK()
	assert.True(t, ok)
	assert.True(t, sampled)

	sampled, ok = NotSampled.SampledOK()
	assert.True(t, ok)
	assert.False(t, sampled)

	assert.True(t, Debug.IsDebug())
	sampled, ok = Debug.SampledOK()
	assert.True(t, ok)
	assert.True(t, sampled, "debug implies sampled")
}

func TestSamplingFlagsIsEmptyOnlyMatchesEmpty(t *testing.T) {
	assert.False(t, Sampled.IsEmpty())
	assert.False(t, NotSampled.IsEmpty())
	assert.False(t, Debug.IsEmpty())
}
