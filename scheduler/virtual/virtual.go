// Package virtual implements a deterministic, manually-advanced
// Scheduler for driving the time-windowed operators (§4.10) and the
// scheduler FIFO property (§8 P8) from tests without real sleeps.
package virtual

import (
	"sync"
	"time"

	"github.com/flowrx/rx/scheduler"
	"github.com/flowrx/rx/token"
)

// Scheduler is a virtual-time Scheduler: its clock only moves when
// AdvanceBy/AdvanceTo is called, and due tasks run synchronously on
// the advancing goroutine, earliest due-time first with ties broken
// by submission order.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*virtualTask
}

type virtualTask struct {
	due      time.Time
	seq      int
	period   time.Duration
	periodic bool
	fn       func()
	disposed bool
}

// New returns a Scheduler whose virtual clock starts at the Unix
// epoch.
func New() *Scheduler {
	return &Scheduler{now: time.Unix(0, 0)}
}

func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Scheduler) CreateWorker() scheduler.Worker {
	return &virtualWorker{sched: s}
}

func (s *Scheduler) ScheduleDirect(task func()) token.Token {
	return s.CreateWorker().Schedule(task)
}

func (s *Scheduler) ScheduleDirectDelayed(task func(), delay time.Duration) token.Token {
	return s.CreateWorker().ScheduleDelayed(task, delay)
}

func (s *Scheduler) enqueue(delay, period time.Duration, periodic bool, fn func()) token.Token {
	s.mu.Lock()
	t := &virtualTask{due: s.now.Add(delay), seq: s.seq, period: period, periodic: periodic, fn: fn}
	s.seq++
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return token.New(func() {
		s.mu.Lock()
		t.disposed = true
		s.mu.Unlock()
	})
}

// AdvanceBy moves the virtual clock forward by d, running every task
// due within the new window.
func (s *Scheduler) AdvanceBy(d time.Duration) {
	s.AdvanceTo(s.Now().Add(d))
}

// AdvanceTo moves the virtual clock forward to target, running every
// non-disposed task due at or before it, earliest-due-first with ties
// broken by submission order. A periodic task reschedules itself for
// its next period and may therefore run more than once in one call.
func (s *Scheduler) AdvanceTo(target time.Time) {
	for {
		s.mu.Lock()
		idx := -1
		for i, t := range s.tasks {
			if t.disposed || t.due.After(target) {
				continue
			}
			if idx == -1 || t.due.Before(s.tasks[idx].due) ||
				(t.due.Equal(s.tasks[idx].due) && t.seq < s.tasks[idx].seq) {
				idx = i
			}
		}
		if idx == -1 {
			s.now = target
			s.mu.Unlock()
			return
		}
		t := s.tasks[idx]
		s.now = t.due
		if t.periodic {
			t.due = t.due.Add(t.period)
		} else {
			s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
		}
		s.mu.Unlock()
		t.fn()
	}
}

type virtualWorker struct {
	sched    *Scheduler
	disposed bool
}

func (w *virtualWorker) Schedule(task func()) token.Token {
	return w.sched.enqueue(0, 0, false, task)
}

func (w *virtualWorker) ScheduleDelayed(task func(), delay time.Duration) token.Token {
	return w.sched.enqueue(delay, 0, false, task)
}

func (w *virtualWorker) SchedulePeriodic(task func(), initialDelay, period time.Duration) token.Token {
	return w.sched.enqueue(initialDelay, period, true, task)
}

// Dispose only marks the worker disposed: tasks it already scheduled
// still run when the clock reaches them, and later Schedule calls are
// still accepted. Cancel an individual task through its own token.
func (w *virtualWorker) Dispose() { w.disposed = true }

func (w *virtualWorker) IsDisposed() bool { return w.disposed }

var _ scheduler.Scheduler = (*Scheduler)(nil)
var _ scheduler.Worker = (*virtualWorker)(nil)
