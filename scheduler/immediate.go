package scheduler

import (
	"sync"
	"time"

	"github.com/flowrx/rx/token"
)

// Immediate returns a Scheduler whose workers run tasks on the
// scheduling goroutine via a trampoline: a task submitted while
// another task is already running on the same worker is queued and
// runs after the current one returns, rather than recursing. This
// keeps a chain of synchronous operators from blowing the stack while
// still giving deterministic, single-threaded execution order —
// exactly the "scheduler that runs inners synchronously" property
// operator tests rely on (spec scenario: flatMap expansion order).
//
// Delayed and periodic tasks still sleep in a background goroutine;
// only same-instant scheduling is trampolined.
func Immediate() Scheduler {
	return immediateScheduler{}
}

var (
	_ Scheduler = immediateScheduler{}
	_ Worker    = (*trampolineWorker)(nil)
)

type immediateScheduler struct{}

func (immediateScheduler) Now() time.Time { return time.Now() }

func (immediateScheduler) CreateWorker() Worker {
	return &trampolineWorker{}
}

func (s immediateScheduler) ScheduleDirect(task func()) token.Token {
	w := s.CreateWorker()
	return w.Schedule(task)
}

func (s immediateScheduler) ScheduleDirectDelayed(task func(), delay time.Duration) token.Token {
	w := s.CreateWorker()
	return w.ScheduleDelayed(task, delay)
}

// trampolineWorker serializes task execution on whichever goroutine
// calls Schedule first; re-entrant Schedule calls made from inside a
// running task are queued instead of recursing.
type trampolineWorker struct {
	mu       sync.Mutex
	running  bool
	disposed bool
	queue    []func() bool // returns false if disposed mid-run
}

func (w *trampolineWorker) Schedule(task func()) token.Token {
	disposed := false
	wrapped := func() bool {
		if disposed {
			return false
		}
		task()
		return true
	}

	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return token.Empty()
	}
	if w.running {
		w.queue = append(w.queue, wrapped)
		w.mu.Unlock()
		return token.New(func() { disposed = true })
	}
	w.running = true
	w.mu.Unlock()

	w.drain(wrapped)
	return token.New(func() { disposed = true })
}

func (w *trampolineWorker) drain(first func() bool) {
	task := first
	for {
		task()

		w.mu.Lock()
		if len(w.queue) == 0 {
			w.running = false
			w.mu.Unlock()
			return
		}
		task = w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()
	}
}

func (w *trampolineWorker) ScheduleDelayed(task func(), delay time.Duration) token.Token {
	if delay <= 0 {
		return w.Schedule(task)
	}

	tok := token.NewSimple()
	timer := time.AfterFunc(delay, func() {
		if tok.IsDisposed() {
			return
		}
		w.Schedule(task)
	})
	return token.New(func() {
		timer.Stop()
		tok.Dispose()
	})
}

func (w *trampolineWorker) SchedulePeriodic(task func(), initialDelay, period time.Duration) token.Token {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		if initialDelay > 0 {
			select {
			case <-time.After(initialDelay):
			case <-stop:
				return
			}
		}
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Schedule(task)
			case <-stop:
				return
			}
		}
	}()

	return token.New(func() { once.Do(func() { close(stop) }) })
}

func (w *trampolineWorker) Dispose() {
	w.mu.Lock()
	w.disposed = true
	w.queue = nil
	w.mu.Unlock()
}

func (w *trampolineWorker) IsDisposed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disposed
}
