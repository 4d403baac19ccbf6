// Package scheduler defines the abstract time source and task
// submission contract the operator engine schedules work on (§4.4).
// Besides the interface, which is the part of the scheduler
// abstraction the core depends on, this package carries Immediate, a
// trampoline scheduler for deterministic tests; the goroutine-pool
// scheduler (pool) and the virtual-time scheduler (virtual) live in
// subpackages.
package scheduler

import (
	"time"

	"github.com/flowrx/rx/token"
)

// Scheduler is an abstract time source and worker factory. Now reports
// the scheduler's notion of the current time — tests substitute a
// virtual clock here so timing operators are deterministic.
type Scheduler interface {
	Now() time.Time
	CreateWorker() Worker

	// ScheduleDirect and ScheduleDirectDelayed run a task without the
	// caller owning a Worker; the scheduler may create and discard an
	// internal one, or reuse a shared one, depending on implementation.
	ScheduleDirect(task func()) token.Token
	ScheduleDirectDelayed(task func(), delay time.Duration) token.Token
}

// Worker executes submitted tasks serially relative to itself (I4): a
// worker never runs two tasks concurrently, and tasks submitted with
// the same delay execute in submission order (P8). A Worker is a
// disposable scoped resource; disposing it cancels every task it has
// pending and prevents further scheduling on it.
type Worker interface {
	Schedule(task func()) token.Token
	ScheduleDelayed(task func(), delay time.Duration) token.Token
	SchedulePeriodic(task func(), initialDelay, period time.Duration) token.Token

	Dispose()
	IsDisposed() bool
}
