package token

import "sync"

// Composite is a set of child tokens disposed together (§4.3.3). Adding
// to an already-disposed composite disposes the added child
// immediately. Disposing the composite disposes every child exactly
// once. Children are keyed by identity so a composite holding many
// copies of the same Token interface value still disposes it once.
type Composite struct {
	mu       sync.Mutex
	disposed bool
	children map[Token]struct{}
}

// NewComposite returns an empty, active Composite.
func NewComposite(children ...Token) *Composite {
	c := &Composite{children: make(map[Token]struct{}, len(children))}
	for _, ch := range children {
		c.Add(ch)
	}
	return c
}

// Add registers child for disposal when the composite disposes. A nil
// child is ignored.
func (c *Composite) Add(child Token) {
	if child == nil {
		return
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		child.Dispose()
		return
	}
	if c.children == nil {
		c.children = make(map[Token]struct{})
	}
	c.children[child] = struct{}{}
	c.mu.Unlock()
}

// Remove deregisters child without disposing it. Used when a child
// finishes on its own and should stop being tracked by its parent
// composite (e.g. a scheduler/pool ScheduledRunnable that has run or
// been disposed).
func (c *Composite) Remove(child Token) {
	c.mu.Lock()
	delete(c.children, child)
	c.mu.Unlock()
}

// Dispose disposes every tracked child exactly once, then marks the
// composite disposed. Safe for concurrent and repeated calls.
func (c *Composite) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	children := c.children
	c.children = nil
	c.mu.Unlock()

	for child := range children {
		child.Dispose()
	}
}

func (c *Composite) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Size reports the number of currently tracked children. Best-effort,
// intended for tests and metrics only.
func (c *Composite) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.children)
}
