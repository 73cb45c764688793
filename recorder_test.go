package brave

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wangxiaojing2413/brave/propagation"
	"github.com/wangxiaojing2413/brave/reporter"
)

func TestRecorderGetOrCreateReturnsSameEntry(t *testing.T) {
	r := newRecorder(reporter.Endpoint{ServiceName: "svc"})
	ctx := propagation.NewBuilder().TraceID(1).SpanID(2).Build()

	m1 := r.getOrCreate(ctx, 5)
	m2 := r.getOrCreate(ctx, 99)

	assert.Same(t, m1, m2, "second getOrCreate must return the existing entry, not overwrite start")
	assert.Equal(t, int64(5), m1.start)
}

func TestRecorderRemoveIsIdempotent(t *testing.T) {
	r := newRecorder(reporter.Endpoint{})
	ctx := propagation.NewBuilder().TraceID(1).SpanID(2).Build()
	r.getOrCreate(ctx, 0)

	_, ok := r.remove(ctx)
	assert.True(t, ok)

	_, ok = r.remove(ctx)
	assert.False(t, ok, "second remove for the same context must report false")
}

func TestRecorderSnapshotReflectsInFlightSpans(t *testing.T) {
	r := newRecorder(reporter.Endpoint{})
	a := propagation.NewBuilder().TraceID(1).SpanID(1).Build()
	b := propagation.NewBuilder().TraceID(1).SpanID(2).Build()

	r.getOrCreate(a, 0)
	r.getOrCreate(b, 0)
	assert.Len(t, r.snapshot(), 2)

	r.remove(a)
	assert.Len(t, r.snapshot(), 1)
}

func TestMutableSpanConcurrentMutationIsSafe(t *testing.T) {
	ctx := propagation.NewBuilder().TraceID(1).SpanID(2).Build()
	m := newMutableSpan(ctx, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.tag("k", "v")
			m.annotate(int64(n), "event")
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.annotations, 50)
}

func TestFinishToSpanDefaultsAndDuration(t *testing.T) {
	ctx := propagation.NewBuilder().TraceID(1).SpanID(2).ParentID(9).Build()
	m := newMutableSpan(ctx, 100)
	m.setName("op")
	m.tag("k", "v")

	span := m.finishToSpan(150, reporter.Endpoint{ServiceName: "svc"})

	assert.Equal(t, "op", span.Name)
	assert.Equal(t, int64(100), span.Timestamp)
	assert.Equal(t, int64(50), span.Duration)
	assert.Equal(t, "0000000000000009", span.ParentID)
	assert.Equal(t, "v", span.Tags["k"])
}

func TestFinishToSpanRecordsErrorTag(t *testing.T) {
	ctx := propagation.NewBuilder().TraceID(1).SpanID(2).Build()
	m := newMutableSpan(ctx, 0)
	m.setError(errors.New("boom"))

	span := m.finishToSpan(0, reporter.Endpoint{})
	assert.Equal(t, "boom", span.Err)
	assert.Equal(t, "boom", span.Tags["error"])
}

func TestSnapshotToDiagnosticSpanBeforeFinish(t *testing.T) {
	ctx := propagation.NewBuilder().TraceID(1).SpanID(10).Build()
	m := newMutableSpan(ctx, 1)

	span := m.snapshotToDiagnosticSpan(reporter.Endpoint{ServiceName: "my-service"})
	assert.Equal(t, int64(1), span.Timestamp)
	assert.Equal(t, "000000000000000a", span.ID)
}
