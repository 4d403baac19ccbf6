package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerExecutesSerially(t *testing.T) {
	p := NewGoroutinePool(WithConcurrency(4))
	defer p.Close()

	w := p.CreateWorker()
	defer w.Dispose()

	var (
		mu      sync.Mutex
		overlap bool
		active  int
	)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		w.Schedule(func() {
			defer wg.Done()
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.False(t, overlap)
}

func TestScheduleDelayedFIFOSameDelay(t *testing.T) {
	p := NewGoroutinePool(WithConcurrency(2))
	defer p.Close()

	w := p.CreateWorker()
	defer w.Dispose()

	var (
		mu    sync.Mutex
		order []int
	)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		w.ScheduleDelayed(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}, 20*time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestDisposeCancelsPendingDelayed(t *testing.T) {
	p := NewGoroutinePool(WithConcurrency(1))
	defer p.Close()

	w := p.CreateWorker()

	ran := false
	tok := w.ScheduleDelayed(func() { ran = true }, 50*time.Millisecond)
	tok.Dispose()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, ran)
}

func TestPurgeRemovesDisposedRunnables(t *testing.T) {
	p := NewGoroutinePool(WithConcurrency(1), WithPurge(true, 20*time.Millisecond))
	defer p.Close()

	w := p.CreateWorker()
	tok := w.ScheduleDelayed(func() {}, time.Hour)
	tok.Dispose()

	assert.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.runnables) == 0
	}, time.Second, 10*time.Millisecond)
}
