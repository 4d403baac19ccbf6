package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flowrx/rx"
	"github.com/flowrx/rx/scheduler/virtual"
)

// Spec §8 scenario 3: a source emitting 1..5 at t=0,250,500,750,1000ms,
// completing at t=1250ms, through a 1s TakeLastTimed window, should
// retain only the values still within the window when it completes.
func TestTakeLastTimed_RetainsTrailingWindow(t *testing.T) {
	sch := virtual.New()

	source := rx.Create(func(e rx.Emitter[int]) {
		w := sch.CreateWorker()
		for i, delayMs := range []int{0, 250, 500, 750, 1000} {
			v := i + 1
			delay := time.Duration(delayMs) * time.Millisecond
			w.ScheduleDelayed(func() { e.OnNext(v) }, delay)
		}
		w.ScheduleDelayed(func() { e.OnComplete() }, 1250*time.Millisecond)
	})

	var values []int
	completed := false
	rx.TakeLastTimed(source, 0, time.Second, sch).Subscribe(rx.NewObserver(rx.Observer[int]{
		Next:     func(v int) { values = append(values, v) },
		Complete: func() { completed = true },
	}))

	sch.AdvanceBy(2 * time.Second)

	assert.Equal(t, []int{2, 3, 4, 5}, values)
	assert.True(t, completed)
}
