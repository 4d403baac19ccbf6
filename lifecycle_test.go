package rx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvStep(t *testing.T, ch <-chan string, d time.Duration) (string, bool) {
	t.Helper()
	select {
	case s := <-ch:
		return s, true
	case <-time.After(d):
		return "", false
	}
}

func TestLifecycleCoordinator_RunsStepsInOrder(t *testing.T) {
	steps := make(chan string, 10)
	lc := newLifecycleCoordinator(
		func() { steps <- "disposeResource" },
		func() { steps <- "closeChildren" },
		func() { steps <- "closeUpstream" },
	)

	done := make(chan struct{})
	go func() { lc.Close(); close(done) }()

	expected := []string{"disposeResource", "closeChildren", "closeUpstream"}
	for _, want := range expected {
		s, ok := recvStep(t, steps, 200*time.Millisecond)
		require.True(t, ok, "expected step %q", want)
		assert.Equal(t, want, s)
	}
	<-done
}

func TestLifecycleCoordinator_IdempotentConcurrentClose(t *testing.T) {
	var calls int
	var mu sync.Mutex
	lc := newLifecycleCoordinator(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lc.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestLifecycleCoordinator_NilStepsAreSkipped(t *testing.T) {
	ran := false
	lc := newLifecycleCoordinator(nil, func() { ran = true }, nil)
	lc.Close()
	assert.True(t, ran)
}
