package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flowrx/rx"
	"github.com/flowrx/rx/scheduler/virtual"
)

// Spec §8 scenario 4: a source that emits once at t=2s then falls
// silent, with a 3s timeout and a fallback source, should deliver the
// one live value followed by the fallback's values and completion.
func TestTimeout_SwitchesToFallbackAfterSilence(t *testing.T) {
	sch := virtual.New()

	source := rx.Create(func(e rx.Emitter[string]) {
		w := sch.CreateWorker()
		w.ScheduleDelayed(func() { e.OnNext("One") }, 2*time.Second)
	})
	fallback := rx.Just("a", "b", "c")

	var values []string
	completed := false
	rx.Timeout(source, 3*time.Second, sch, &fallback).Subscribe(rx.NewObserver(rx.Observer[string]{
		Next:     func(v string) { values = append(values, v) },
		Complete: func() { completed = true },
	}))

	sch.AdvanceBy(6 * time.Second)

	assert.Equal(t, []string{"One", "a", "b", "c"}, values)
	assert.True(t, completed)
}
