package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowrx/rx"
	"github.com/flowrx/rx/scheduler/pool"
)

// Spec §8 scenario 7: a large synchronous source fed through
// observeOn().takeLast(n) must yield exactly n items with no queue
// overflow, even though observeOn's handoff queue is far smaller than
// the source. Scaled down from the spec's 4,000,000 items to keep the
// test fast; the property under test (bounded queue, no overflow
// error) does not depend on the exact count.
func TestObserveOn_TakeLastUnderLargeSyncSource(t *testing.T) {
	const total = 200_000
	const last = 100

	p := pool.NewGoroutinePool(pool.WithConcurrency(4))
	defer p.Close()

	source := rx.Range(1, total)
	stream := rx.TakeLast(rx.ObserveOn(source, p, rx.DefaultPrefetch, false), last)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	values, err := rx.ToSlice(ctx, stream)
	require.NoError(t, err)
	require.Len(t, values, last)

	for i, v := range values {
		require.Equal(t, total-last+1+i, v)
	}
}
