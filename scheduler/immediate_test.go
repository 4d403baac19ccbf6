package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImmediateRunsSynchronously(t *testing.T) {
	w := Immediate().CreateWorker()
	ran := false
	w.Schedule(func() { ran = true })
	assert.True(t, ran)
}

func TestImmediateTrampolinesReentrantSchedule(t *testing.T) {
	w := Immediate().CreateWorker()

	var order []int
	w.Schedule(func() {
		order = append(order, 1)
		w.Schedule(func() { order = append(order, 3) })
		order = append(order, 2)
	})

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestImmediateDisposeAfterSynchronousRunHasNoEffect(t *testing.T) {
	w := Immediate().CreateWorker()
	ran := false
	tok := w.Schedule(func() { ran = true })
	tok.Dispose()
	assert.True(t, ran) // already ran synchronously before dispose could take effect
}
