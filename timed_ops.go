package rx

import (
	"sync"
	"time"

	"github.com/flowrx/rx/internal/timedqueue"
	"github.com/flowrx/rx/scheduler"
	"github.com/flowrx/rx/token"
)

// Debounce emits the latest value only after duration has elapsed
// without a further arrival; each new arrival replaces the pending
// scheduled task (§4.10 "debounce").
func Debounce[T any](src Observable[T], duration time.Duration, sch scheduler.Scheduler) Observable[T] {
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		worker := sch.CreateWorker()
		pending := token.NewSerial()
		composite := token.NewComposite()
		composite.Add(token.New(worker.Dispose))
		composite.Add(pending)
		downstream.OnSubscribe(composite)

		st := &debounceState[T]{downstream: downstream, worker: worker, pending: pending}
		upTok := src.Subscribe(&debounceSubscriber[T]{state: st, duration: duration})
		composite.Add(upTok)
		return composite
	}}
}

type debounceState[T any] struct {
	downstream Subscriber[T]
	worker     scheduler.Worker
	pending    *token.Serial
	finished   bool
}

type debounceSubscriber[T any] struct {
	state    *debounceState[T]
	duration time.Duration
	latest   T
	has      bool
}

func (d *debounceSubscriber[T]) OnSubscribe(token.Token) {}

func (d *debounceSubscriber[T]) OnNext(v T) {
	st := d.state
	if st.finished {
		return
	}
	d.latest, d.has = v, true
	val := v
	tok := st.worker.ScheduleDelayed(func() {
		if st.finished {
			return
		}
		st.downstream.OnNext(val)
	}, d.duration)
	st.pending.SetChild(tok)
}

func (d *debounceSubscriber[T]) OnError(err error) {
	st := d.state
	if st.finished {
		reportUndeliverable(err)
		return
	}
	st.finished = true
	st.pending.Dispose()
	st.downstream.OnError(err)
}

func (d *debounceSubscriber[T]) OnComplete() {
	st := d.state
	if st.finished {
		return
	}
	st.finished = true
	if d.has {
		st.downstream.OnNext(d.latest)
	}
	st.downstream.OnComplete()
}

// ThrottleFirst emits the first arrival in each duration-long window
// and drops the rest; the window resets on a successful emission
// (§4.10 "throttleFirst").
func ThrottleFirst[T any](src Observable[T], duration time.Duration, sch scheduler.Scheduler) Observable[T] {
	return lift(src, func(downstream Subscriber[T]) Subscriber[T] {
		return &throttleFirstSubscriber[T]{downstream: downstream, duration: duration, sch: sch}
	})
}

type throttleFirstSubscriber[T any] struct {
	downstream  Subscriber[T]
	duration    time.Duration
	sch         scheduler.Scheduler
	windowUntil time.Time
}

func (t *throttleFirstSubscriber[T]) OnSubscribe(tok token.Token) { t.downstream.OnSubscribe(tok) }

func (t *throttleFirstSubscriber[T]) OnNext(v T) {
	now := t.sch.Now()
	if !t.windowUntil.IsZero() && now.Before(t.windowUntil) {
		return
	}
	t.windowUntil = now.Add(t.duration)
	t.downstream.OnNext(v)
}

func (t *throttleFirstSubscriber[T]) OnError(err error) { t.downstream.OnError(err) }
func (t *throttleFirstSubscriber[T]) OnComplete()       { t.downstream.OnComplete() }

// Sample emits the latest seen value once per duration tick; it does
// not re-emit if nothing arrived since the previous tick (§4.10
// "sample").
func Sample[T any](src Observable[T], duration time.Duration, sch scheduler.Scheduler) Observable[T] {
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		worker := sch.CreateWorker()
		composite := token.NewComposite()
		composite.Add(token.New(worker.Dispose))
		downstream.OnSubscribe(composite)

		st := &sampleState[T]{downstream: downstream}
		tickTok := worker.SchedulePeriodic(func() {
			st.mu.Lock()
			v, has, done := st.latest, st.has, st.finished
			st.has = false
			st.mu.Unlock()
			if !done && has {
				downstream.OnNext(v)
			}
		}, duration, duration)
		composite.Add(tickTok)

		upTok := src.Subscribe(&sampleSubscriber[T]{state: st})
		composite.Add(upTok)
		return composite
	}}
}

type sampleState[T any] struct {
	mu         sync.Mutex
	latest     T
	has        bool
	finished   bool
	downstream Subscriber[T]
}

type sampleSubscriber[T any] struct {
	state *sampleState[T]
}

func (s *sampleSubscriber[T]) OnSubscribe(token.Token) {}

func (s *sampleSubscriber[T]) OnNext(v T) {
	st := s.state
	st.mu.Lock()
	st.latest, st.has = v, true
	st.mu.Unlock()
}

func (s *sampleSubscriber[T]) OnError(err error) {
	st := s.state
	st.mu.Lock()
	st.finished = true
	st.mu.Unlock()
	st.downstream.OnError(err)
}

func (s *sampleSubscriber[T]) OnComplete() {
	st := s.state
	st.mu.Lock()
	st.finished = true
	st.mu.Unlock()
	st.downstream.OnComplete()
}

// Timeout arms a delayed task that resets on every arrival; on expiry
// it either errors with ErrTimeout (fallback == nil) or switches to
// fallback (§4.10 "timeout", §8 scenario 4).
func Timeout[T any](src Observable[T], duration time.Duration, sch scheduler.Scheduler, fallback *Observable[T]) Observable[T] {
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		worker := sch.CreateWorker()
		pending := token.NewSerial()
		current := token.NewSerial()
		composite := token.NewComposite()
		composite.Add(token.New(worker.Dispose))
		composite.Add(pending)
		composite.Add(current)
		downstream.OnSubscribe(composite)

		st := &timeoutState[T]{
			downstream: downstream,
			worker:     worker,
			pending:    pending,
			current:    current,
			fallback:   fallback,
			duration:   duration,
		}
		st.arm()

		upTok := src.Subscribe(&timeoutSubscriber[T]{state: st})
		current.SetChild(upTok)
		return composite
	}}
}

type timeoutState[T any] struct {
	downstream    Subscriber[T]
	worker        scheduler.Worker
	pending       *token.Serial
	current       *token.Serial
	fallback      *Observable[T]
	duration      time.Duration
	finished      bool
	usingFallback bool
}

func (s *timeoutState[T]) arm() {
	tok := s.worker.ScheduleDelayed(s.fire, s.duration)
	s.pending.SetChild(tok)
}

func (s *timeoutState[T]) fire() {
	if s.finished || s.usingFallback {
		return
	}
	if s.fallback == nil {
		s.finished = true
		s.current.Dispose()
		s.downstream.OnError(ErrTimeout)
		return
	}
	s.usingFallback = true
	fbTok := s.fallback.Subscribe(&timeoutPassthrough[T]{state: s})
	s.current.SetChild(fbTok)
}

type timeoutSubscriber[T any] struct {
	state *timeoutState[T]
}

func (t *timeoutSubscriber[T]) OnSubscribe(token.Token) {}

func (t *timeoutSubscriber[T]) OnNext(v T) {
	st := t.state
	if st.finished || st.usingFallback {
		return
	}
	st.arm()
	st.downstream.OnNext(v)
}

func (t *timeoutSubscriber[T]) OnError(err error) {
	st := t.state
	if st.finished || st.usingFallback {
		reportUndeliverable(err)
		return
	}
	st.finished = true
	st.pending.Dispose()
	st.downstream.OnError(err)
}

func (t *timeoutSubscriber[T]) OnComplete() {
	st := t.state
	if st.finished || st.usingFallback {
		return
	}
	st.finished = true
	st.pending.Dispose()
	st.downstream.OnComplete()
}

type timeoutPassthrough[T any] struct {
	state *timeoutState[T]
}

func (t *timeoutPassthrough[T]) OnSubscribe(token.Token) {}
func (t *timeoutPassthrough[T]) OnNext(v T)              { t.state.downstream.OnNext(v) }
func (t *timeoutPassthrough[T]) OnError(err error) {
	t.state.finished = true
	t.state.downstream.OnError(err)
}
func (t *timeoutPassthrough[T]) OnComplete() {
	t.state.finished = true
	t.state.downstream.OnComplete()
}

// TakeLastTimed retains only the values that arrived within the
// trailing duration window, additionally bounded to the last n when
// n > 0, and flushes the retained window on completion (§4.10
// "takeLast(n, duration)", §8 scenario 3).
func TakeLastTimed[T any](src Observable[T], n int, duration time.Duration, sch scheduler.Scheduler) Observable[T] {
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		st := &takeLastState[T]{downstream: downstream, q: timedqueue.New[T](), n: n, duration: duration, sch: sch}
		return src.Subscribe(&takeLastSubscriber[T]{state: st})
	}}
}

type takeLastState[T any] struct {
	downstream Subscriber[T]
	q          *timedqueue.Queue[T]
	n          int
	duration   time.Duration
	sch        scheduler.Scheduler
}

func (s *takeLastState[T]) push(v T) {
	now := s.sch.Now()
	s.q.Push(now, v)
	s.q.DropOlderThan(now.Add(-s.duration))
	s.q.DropExceeding(s.n)
}

type takeLastSubscriber[T any] struct {
	state *takeLastState[T]
}

func (t *takeLastSubscriber[T]) OnSubscribe(tok token.Token) { t.state.downstream.OnSubscribe(tok) }
func (t *takeLastSubscriber[T]) OnNext(v T)                  { t.state.push(v) }
func (t *takeLastSubscriber[T]) OnError(err error)           { t.state.downstream.OnError(err) }
func (t *takeLastSubscriber[T]) OnComplete() {
	st := t.state
	st.q.DropOlderThan(st.sch.Now().Add(-st.duration))
	for _, e := range st.q.Drain() {
		st.downstream.OnNext(e.Val)
	}
	st.downstream.OnComplete()
}

// SkipLastTimed emits only values older than now-duration, holding
// back a lone remaining value until the next arrival to avoid
// premature emission at the tail (§4.10 "skipLast(duration)").
func SkipLastTimed[T any](src Observable[T], duration time.Duration, sch scheduler.Scheduler) Observable[T] {
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		st := &skipLastState[T]{downstream: downstream, q: timedqueue.New[T](), duration: duration, sch: sch}
		return src.Subscribe(&skipLastSubscriber[T]{state: st})
	}}
}

type skipLastState[T any] struct {
	downstream Subscriber[T]
	q          *timedqueue.Queue[T]
	duration   time.Duration
	sch        scheduler.Scheduler
}

func (s *skipLastState[T]) push(v T) {
	now := s.sch.Now()
	s.q.Push(now, v)
	cutoff := now.Add(-s.duration)
	for s.q.Len() > 1 {
		e, _ := s.q.Front()
		if !e.At.Before(cutoff) {
			break
		}
		s.q.PopFront()
		s.downstream.OnNext(e.Val)
	}
}

type skipLastSubscriber[T any] struct {
	state *skipLastState[T]
}

func (s *skipLastSubscriber[T]) OnSubscribe(tok token.Token) { s.state.downstream.OnSubscribe(tok) }
func (s *skipLastSubscriber[T]) OnNext(v T)                  { s.state.push(v) }
func (s *skipLastSubscriber[T]) OnError(err error)           { s.state.downstream.OnError(err) }
func (s *skipLastSubscriber[T]) OnComplete()                 { s.state.downstream.OnComplete() }
