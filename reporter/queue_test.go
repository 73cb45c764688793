package reporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewQueueReporterStartsEmpty(t *testing.T) {
	r := NewQueueReporter("test", 100)
	defer r.Close()

	assert.Equal(t, 0, r.Count())
	assert.Equal(t, int64(0), r.DroppedCount())
}

func TestQueueReporterSyncModeIsDeterministic(t *testing.T) {
	r := NewQueueReporter("test", 10)
	r.SetSyncMode(true)
	defer r.Close()

	r.Report(Span{ID: "span-1"})

	assert.Equal(t, 1, r.Count())
	spans := r.Export()
	assert.Len(t, spans, 1)
	assert.Equal(t, "span-1", spans[0].ID)
	assert.Equal(t, 0, r.Count(), "export drains the buffer")
}

func TestQueueReporterBackpressureDropsAndCounts(t *testing.T) {
	r := NewQueueReporter("test", 2)
	defer r.Close()

	for i := 0; i < 50; i++ {
		r.Report(Span{ID: "span"})
	}

	assert.Eventually(t, func() bool { return r.DroppedCount() > 0 }, time.Second, time.Millisecond,
		"expected some spans dropped under backpressure")
}

func TestQueueReporterAsyncModeEventuallyBuffers(t *testing.T) {
	r := NewQueueReporter("test", 10)
	defer r.Close()

	r.Report(Span{ID: "span-1"})

	assert.Eventually(t, func() bool { return r.Count() == 1 }, time.Second, time.Millisecond)
}

func TestQueueReporterCloseIsIdempotentAndDropsAfter(t *testing.T) {
	r := NewQueueReporter("test", 10)
	r.SetSyncMode(true)
	r.Close()
	assert.NotPanics(t, r.Close)

	r.Report(Span{ID: "after-close"})
	assert.Equal(t, int64(1), r.DroppedCount())
}

func TestQueueReporterString(t *testing.T) {
	named := NewQueueReporter("MyReporter", 1)
	defer named.Close()
	assert.Equal(t, "QueueReporter{MyReporter}", named.String())

	unnamed := NewQueueReporter("", 1)
	defer unnamed.Close()
	assert.Equal(t, "QueueReporter{}", unnamed.String())
}
