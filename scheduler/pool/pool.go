// Package pool provides the production Scheduler implementation: a
// fixed-size goroutine pool that executes submitted work, with each
// Worker serializing its own tasks onto that shared pool via the
// drain-loop pattern (§4.1.3) rather than owning a dedicated
// goroutine. This mirrors how the teacher package's pool.Pool
// amortizes goroutine-worthy objects across many logical clients, but
// here the pooled resource is execution capacity rather than task
// wrapper instances.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowrx/rx/scheduler"
	"github.com/flowrx/rx/token"
)

var _ scheduler.Scheduler = (*GoroutinePool)(nil)
var _ scheduler.Worker = (*PoolWorker)(nil)

// Config configures a GoroutinePool scheduler.
type Config struct {
	// Concurrency is the number of persistent executor goroutines.
	// Default 0 selects runtime.GOMAXPROCS(0).
	Concurrency int

	// PurgeEnabled enables periodic purging of the scheduler's
	// bookkeeping registry of cancelled or already-fired delayed/periodic
	// tasks (§4.4 "Purging policy"). Default true.
	PurgeEnabled bool

	// PurgePeriod is the purge cadence. Default 2 seconds, per
	// spec's purge-period-seconds default.
	PurgePeriod time.Duration
}

// DefaultConfig mirrors the process-wide defaults from spec §6.
func DefaultConfig() Config {
	return Config{
		Concurrency:  0,
		PurgeEnabled: true,
		PurgePeriod:  2 * time.Second,
	}
}

// Option configures a GoroutinePool at construction.
type Option func(*Config)

// WithConcurrency overrides the number of executor goroutines.
func WithConcurrency(n int) Option { return func(c *Config) { c.Concurrency = n } }

// WithPurge overrides the purge-enabled and purge-period knobs
// together, matching how spec §6's two options are read as a pair.
func WithPurge(enabled bool, period time.Duration) Option {
	return func(c *Config) {
		c.PurgeEnabled = enabled
		c.PurgePeriod = period
	}
}

// GoroutinePool is a Scheduler backed by a fixed pool of executor
// goroutines shared by every Worker it creates.
type GoroutinePool struct {
	cfg  Config
	jobs chan func()

	mu       sync.Mutex
	runnables map[*ScheduledRunnable]struct{}

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewGoroutinePool starts a GoroutinePool scheduler and its purge
// ticker (if enabled).
func NewGoroutinePool(opts ...Option) *GoroutinePool {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}

	p := &GoroutinePool{
		cfg:       cfg,
		jobs:      make(chan func(), 1024),
		runnables: make(map[*ScheduledRunnable]struct{}),
		closeCh:   make(chan struct{}),
	}

	for i := 0; i < cfg.Concurrency; i++ {
		go p.executorLoop()
	}
	if cfg.PurgeEnabled {
		go p.purgeLoop()
	}

	return p
}

func (p *GoroutinePool) executorLoop() {
	for job := range p.jobs {
		job()
	}
}

// purgeLoop periodically removes ScheduledRunnables that have already
// finished or been disposed from the registry, bounding memory growth
// for long-running periodic timers. The x/time/rate limiter admits at
// most one sweep per PurgePeriod (burst 1), the same cadence as the
// ticker, so it only skips a tick that arrives early.
func (p *GoroutinePool) purgeLoop() {
	limiter := rate.NewLimiter(rate.Every(p.cfg.PurgePeriod), 1)
	ticker := time.NewTicker(p.cfg.PurgePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.closeCh:
			return
		case <-ticker.C:
			if !limiter.Allow() {
				continue
			}
			p.purge()
		}
	}
}

func (p *GoroutinePool) purge() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for r := range p.runnables {
		if r.IsDisposed() || r.state.Load() == stateDone {
			delete(p.runnables, r)
		}
	}
}

func (p *GoroutinePool) track(r *ScheduledRunnable) {
	p.mu.Lock()
	p.runnables[r] = struct{}{}
	p.mu.Unlock()
}

// Close stops the executor and purge goroutines. Workers created from
// this scheduler become unusable afterward.
func (p *GoroutinePool) Close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		close(p.jobs)
	})
}

func (p *GoroutinePool) Now() time.Time { return time.Now() }

func (p *GoroutinePool) CreateWorker() scheduler.Worker {
	return &PoolWorker{pool: p, pending: token.NewComposite()}
}

func (p *GoroutinePool) ScheduleDirect(task func()) token.Token {
	w := p.CreateWorker()
	t := w.Schedule(task)
	return token.New(func() { t.Dispose(); w.Dispose() })
}

func (p *GoroutinePool) ScheduleDirectDelayed(task func(), delay time.Duration) token.Token {
	w := p.CreateWorker()
	t := w.ScheduleDelayed(task, delay)
	return token.New(func() { t.Dispose(); w.Dispose() })
}

// PoolWorker serializes tasks submitted to it onto the shared
// GoroutinePool via the drain-loop pattern: Schedule appends to a
// local FIFO and, on the idle->busy transition, submits one drain job
// to the shared pool; the drain job keeps running queued tasks until
// the queue is empty, satisfying "never concurrently with itself".
type PoolWorker struct {
	pool *GoroutinePool

	mu       sync.Mutex
	queue    []func() bool
	draining bool
	disposed bool

	pending *token.Composite
}

func (w *PoolWorker) Schedule(task func()) token.Token {
	var disposed atomic.Bool
	wrapped := func() bool {
		if disposed.Load() {
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
	w.queue = append(w.queue, wrapped)
	startDrain := !w.draining
	if startDrain {
		w.draining = true
	}
	w.mu.Unlock()

	if startDrain {
		w.pool.jobs <- w.drain
	}

	return token.New(func() { disposed.Store(true) })
}

func (w *PoolWorker) drain() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.draining = false
			w.mu.Unlock()
			return
		}
		task := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		task()
	}
}

func (w *PoolWorker) ScheduleDelayed(task func(), delay time.Duration) token.Token {
	if delay <= 0 {
		return w.Schedule(task)
	}

	r := NewScheduledRunnable()
	r.SetParent(w.pending)
	w.pool.track(r)

	timer := time.AfterFunc(delay, func() {
		if r.IsDisposed() {
			return
		}
		w.Schedule(func() {
			task()
			r.MarkDone()
		})
	})
	r.SetTimer(timer)
	w.pending.Add(tokenAdapter{r})

	return token.New(func() { r.Dispose() })
}

func (w *PoolWorker) SchedulePeriodic(task func(), initialDelay, period time.Duration) token.Token {
	r := NewScheduledRunnable()
	r.SetParent(w.pending)
	w.pool.track(r)
	w.pending.Add(tokenAdapter{r})

	stop := make(chan struct{})
	var stopOnce sync.Once
	stopFn := func() { stopOnce.Do(func() { close(stop) }) }

	go func() {
		if initialDelay > 0 {
			select {
			case <-time.After(initialDelay):
			case <-stop:
				return
			}
		}
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if r.IsDisposed() {
					return
				}
				w.Schedule(task)
			case <-stop:
				return
			}
		}
	}()

	return token.New(func() {
		stopFn()
		r.Dispose()
	})
}

func (w *PoolWorker) Dispose() {
	w.mu.Lock()
	w.disposed = true
	w.queue = nil
	w.mu.Unlock()
	w.pending.Dispose()
}

func (w *PoolWorker) IsDisposed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disposed
}
