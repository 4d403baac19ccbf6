package pool

import (
	"sync/atomic"
	"time"

	"github.com/flowrx/rx/token"
)

// runnable states (§4.4).
const (
	statePending int32 = iota
	stateDone
	stateDisposed
)

// ScheduledRunnable is the task wrapper used by a pool-backed Worker
// for delayed and periodic scheduling. It holds a back-reference to
// the parent composite it was registered under (so the worker can
// deregister it on completion) and the underlying timer future, and
// uses compare-and-swap so a Dispose racing with the task's own run
// can never double-stop the timer or double-deregister.
type ScheduledRunnable struct {
	state  atomic.Int32
	timer  atomic.Pointer[time.Timer]
	parent atomic.Pointer[token.Composite]
}

// NewScheduledRunnable returns a pending ScheduledRunnable. SetTimer and
// SetParent are filled in by the caller after construction, since the
// timer typically needs a reference to the ScheduledRunnable itself.
func NewScheduledRunnable() *ScheduledRunnable {
	r := &ScheduledRunnable{}
	r.state.Store(statePending)
	return r
}

// SetTimer records the scheduler future backing this runnable.
func (r *ScheduledRunnable) SetTimer(t *time.Timer) { r.timer.Store(t) }

// SetParent records the composite this runnable was added to, so
// Dispose can remove itself.
func (r *ScheduledRunnable) SetParent(c *token.Composite) { r.parent.Store(c) }

// MarkDone transitions pending->done after the task body has run. A
// concurrent Dispose that already won the race is left untouched.
func (r *ScheduledRunnable) MarkDone() {
	if !r.state.CompareAndSwap(statePending, stateDone) {
		return
	}
	if p := r.parent.Load(); p != nil {
		p.Remove(tokenAdapter{r})
	}
}

// Dispose cancels the pending timer (if any) and deregisters from the
// parent composite (if any), exactly once.
func (r *ScheduledRunnable) Dispose() {
	if !r.state.CompareAndSwap(statePending, stateDisposed) {
		return
	}
	if t := r.timer.Load(); t != nil {
		t.Stop()
	}
	if p := r.parent.Load(); p != nil {
		p.Remove(tokenAdapter{r})
	}
}

func (r *ScheduledRunnable) IsDisposed() bool {
	return r.state.Load() == stateDisposed
}

// tokenAdapter lets a ScheduledRunnable be tracked inside a
// token.Composite (which is keyed by Token identity) without exposing
// Dispose/IsDisposed directly as promoted methods that could be called
// out of the intended CAS sequence from outside this package.
type tokenAdapter struct{ r *ScheduledRunnable }

func (a tokenAdapter) Dispose()         { a.r.Dispose() }
func (a tokenAdapter) IsDisposed() bool { return a.r.IsDisposed() }
