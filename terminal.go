package rx

import "sync/atomic"

type terminalState int32

const (
	terminalActive terminalState = iota
	terminalTerminating
	terminalTerminated
)

// terminalLatch implements the three-state terminal latch (§4.1.4):
// onError/onComplete atomically transition active->terminating; the
// drainer flushes buffered items and then advances to terminated. If
// multiple terminals race, the first wins and later ones are routed to
// the undeliverable-error hook.
type terminalLatch struct {
	state atomic.Int32
	err   atomic.Pointer[error]
}

// beginTerminal attempts active->terminating and records err for the
// eventual drain. Returns false if another terminal already won the
// race; the caller should then report err as undeliverable.
func (t *terminalLatch) beginTerminal(err error) bool {
	if !t.state.CompareAndSwap(int32(terminalActive), int32(terminalTerminating)) {
		return false
	}
	if err != nil {
		t.err.Store(&err)
	}
	return true
}

// finish advances terminating->terminated after the drainer has
// flushed every buffered item and emitted the terminal signal.
func (t *terminalLatch) finish() {
	t.state.Store(int32(terminalTerminated))
}

func (t *terminalLatch) isTerminating() bool {
	return terminalState(t.state.Load()) == terminalTerminating
}

func (t *terminalLatch) isTerminated() bool {
	return terminalState(t.state.Load()) == terminalTerminated
}

// pendingErr returns the error recorded by the winning beginTerminal
// call, or nil for a plain completion.
func (t *terminalLatch) pendingErr() error {
	if p := t.err.Load(); p != nil {
		return *p
	}
	return nil
}
