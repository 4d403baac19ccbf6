package rx

import (
	"sync/atomic"

	"github.com/flowrx/rx/internal/spscq"
	"github.com/flowrx/rx/metrics"
	"github.com/flowrx/rx/scheduler"
	"github.com/flowrx/rx/token"
)

// ObserveOn receives upstream signals on whatever goroutine delivers
// them and re-emits them downstream on a worker from sch, decoupling
// producer and consumer threads with a bounded queue (§4.5). delayError
// selects whether an upstream error is delivered as soon as it arrives
// (fast-fail: once the drain loop sees the fast-fail flag it discards
// the values still buffered ahead of the error item instead of
// delivering them) or
// queued as a sentinel behind already-buffered items (delay-error).
func ObserveOn[T any](src Observable[T], sch scheduler.Scheduler, prefetch int, delayError bool) Observable[T] {
	if prefetch <= 0 {
		prefetch = DefaultPrefetch
	}
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		worker := sch.CreateWorker()
		composite := token.NewComposite()
		composite.Add(token.New(worker.Dispose))

		oo := &observeOnState[T]{
			downstream: downstream,
			worker:     worker,
			queue:      spscq.New[observeOnItem[T]](prefetch),
			delayError: delayError,
			disposed:   composite,
			queueDepth: currentMetrics().UpDownCounter("rx_observe_on_queue_depth"),
		}
		downstream.OnSubscribe(composite)

		upTok := src.Subscribe(&observeOnUpstream[T]{state: oo})
		composite.Add(upTok)
		return composite
	}}
}

type observeOnKind uint8

const (
	observeOnNext observeOnKind = iota
	observeOnError
	observeOnComplete
)

type observeOnItem[T any] struct {
	kind observeOnKind
	val  T
	err  error
}

// observeOnState owns the bounded handoff queue and the wip/drain
// bookkeeping (§4.1.3) that gets the queued items onto the worker.
type observeOnState[T any] struct {
	downstream Subscriber[T]
	worker     scheduler.Worker
	queue      *spscq.Queue[observeOnItem[T]]
	delayError bool
	disposed   token.Token
	drain      drainLoop
	latch      terminalLatch
	queueDepth metrics.UpDownCounter
	fastFail   atomic.Bool
}

func (s *observeOnState[T]) scheduleDrain() {
	s.drain.trigger(func() {
		s.worker.Schedule(s.drainOnce)
	})
}

func (s *observeOnState[T]) drainOnce() {
	for {
		if s.disposed.IsDisposed() {
			s.queue.Clear()
			return
		}
		item, ok := s.queue.Poll()
		if !ok {
			return
		}
		if s.fastFail.Load() && item.kind == observeOnNext {
			// A fast-fail error was reported upstream; discard
			// everything still buffered ahead of it instead of
			// delivering it, without touching the queue from any
			// goroutine but this one.
			s.queueDepth.Add(-1)
			continue
		}
		switch item.kind {
		case observeOnNext:
			s.queueDepth.Add(-1)
			s.downstream.OnNext(item.val)
		case observeOnError:
			s.latch.finish()
			s.downstream.OnError(item.err)
			return
		case observeOnComplete:
			s.latch.finish()
			s.downstream.OnComplete()
			return
		}
	}
}

type observeOnUpstream[T any] struct {
	state *observeOnState[T]
}

func (u *observeOnUpstream[T]) OnSubscribe(token.Token) {}

func (u *observeOnUpstream[T]) OnNext(v T) {
	s := u.state
	if s.latch.isTerminating() || s.latch.isTerminated() {
		return
	}
	s.queue.Offer(observeOnItem[T]{kind: observeOnNext, val: v})
	s.queueDepth.Add(1)
	s.scheduleDrain()
}

func (u *observeOnUpstream[T]) OnError(err error) {
	s := u.state
	if !s.latch.beginTerminal(err) {
		reportUndeliverable(err)
		return
	}
	if !s.delayError {
		s.fastFail.Store(true)
	}
	s.queue.Offer(observeOnItem[T]{kind: observeOnError, err: err})
	s.scheduleDrain()
}

func (u *observeOnUpstream[T]) OnComplete() {
	s := u.state
	if !s.latch.beginTerminal(nil) {
		return
	}
	s.queue.Offer(observeOnItem[T]{kind: observeOnComplete})
	s.scheduleDrain()
}
