package rx

import (
	"time"

	"github.com/flowrx/rx/scheduler"
	"github.com/flowrx/rx/token"
)

// Timer emits a single 0 value after delay elapses on a worker created
// from sch, then completes (§6 "one-shot timer").
func Timer(delay time.Duration, sch scheduler.Scheduler) Observable[int64] {
	return Observable[int64]{subscribeFn: func(sub Subscriber[int64]) token.Token {
		worker := sch.CreateWorker()
		composite := token.NewComposite()
		composite.Add(token.New(worker.Dispose))
		sub.OnSubscribe(composite)

		taskTok := worker.ScheduleDelayed(func() {
			if composite.IsDisposed() {
				return
			}
			sub.OnNext(0)
			if !composite.IsDisposed() {
				sub.OnComplete()
			}
		}, delay)
		composite.Add(taskTok)
		return composite
	}}
}

// Interval emits 0, 1, 2, ... every period on a worker created from
// sch, until disposed (§6 "periodic timer").
func Interval(period time.Duration, sch scheduler.Scheduler) Observable[int64] {
	return Observable[int64]{subscribeFn: func(sub Subscriber[int64]) token.Token {
		worker := sch.CreateWorker()
		composite := token.NewComposite()
		composite.Add(token.New(worker.Dispose))
		sub.OnSubscribe(composite)

		var n int64
		taskTok := worker.SchedulePeriodic(func() {
			if composite.IsDisposed() {
				return
			}
			v := n
			n++
			sub.OnNext(v)
		}, period, period)
		composite.Add(taskTok)
		return composite
	}}
}
