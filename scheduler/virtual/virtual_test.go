package virtual_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowrx/rx/scheduler/virtual"
)

func TestScheduler_RunsDueTasksInOrder(t *testing.T) {
	sch := virtual.New()
	w := sch.CreateWorker()

	var order []int
	w.ScheduleDelayed(func() { order = append(order, 2) }, 200*time.Millisecond)
	w.ScheduleDelayed(func() { order = append(order, 1) }, 100*time.Millisecond)
	w.Schedule(func() { order = append(order, 0) })

	sch.AdvanceBy(250 * time.Millisecond)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestScheduler_EqualDelaysRunInSubmissionOrder(t *testing.T) {
	sch := virtual.New()
	w := sch.CreateWorker()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		w.ScheduleDelayed(func() { order = append(order, i) }, 50*time.Millisecond)
	}

	sch.AdvanceBy(50 * time.Millisecond)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestScheduler_DisposedTaskDoesNotRun(t *testing.T) {
	sch := virtual.New()
	w := sch.CreateWorker()

	ran := false
	tok := w.ScheduleDelayed(func() { ran = true }, 100*time.Millisecond)
	tok.Dispose()

	sch.AdvanceBy(200 * time.Millisecond)
	assert.False(t, ran)
}

func TestScheduler_PeriodicTaskRunsEveryPeriodWithinOneAdvance(t *testing.T) {
	sch := virtual.New()
	w := sch.CreateWorker()

	count := 0
	tok := w.SchedulePeriodic(func() { count++ }, 100*time.Millisecond, 100*time.Millisecond)
	defer tok.Dispose()

	sch.AdvanceBy(350 * time.Millisecond)
	assert.Equal(t, 3, count)
}

func TestScheduler_NowReflectsAdvance(t *testing.T) {
	sch := virtual.New()
	start := sch.Now()

	sch.AdvanceBy(time.Second)
	require.Equal(t, start.Add(time.Second), sch.Now())
}
