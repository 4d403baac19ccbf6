package rx

import "sync"

// lifecycleCoordinator runs an ordered sequence of teardown steps
// exactly once, regardless of how many goroutines call Close
// concurrently. It is used by the Using resource bracket (§4.12) to
// run the disposer exactly once while sequencing disposer-vs-terminal
// delivery (eager vs default ordering).
type lifecycleCoordinator struct {
	steps []func()
	once  sync.Once
}

func newLifecycleCoordinator(steps ...func()) *lifecycleCoordinator {
	return &lifecycleCoordinator{steps: steps}
}

// Close runs every step in order, exactly once.
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		for _, step := range lc.steps {
			if step != nil {
				step()
			}
		}
	})
}
