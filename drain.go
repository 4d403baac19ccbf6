package rx

import "sync/atomic"

// drainLoop implements the wip/missed queue-drain pattern (§4.1.3): any
// number of producers may call trigger concurrently; exactly one
// becomes the drainer and runs body repeatedly until no producer
// arrived while it was running. This gives mutually exclusive, serial
// delivery without locks.
type drainLoop struct {
	wip atomic.Int32
}

// trigger registers one unit of pending work. If the caller becomes
// the drainer (wip transitions 0->1), it runs body in a loop, once per
// unit still outstanding, until the counter returns to zero.
func (d *drainLoop) trigger(body func()) {
	if d.wip.Add(1) != 1 {
		return
	}
	for {
		body()
		if d.wip.Add(-1) == 0 {
			return
		}
	}
}
