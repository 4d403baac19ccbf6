package rx

import "github.com/flowrx/rx/token"

// Using brackets a per-subscription resource (§4.12): acquire via
// newResource, build the stream via observableFactory, and run
// dispose exactly once, on whichever comes first of a terminal signal
// or cancellation. eager selects whether dispose runs before
// (eager=true) or after (eager=false, the default ordering) the
// terminal signal reaches the downstream subscriber.
func Using[R, T any](newResource func() (R, error), observableFactory func(R) Observable[T], dispose func(R), eager bool) Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		res, err := newResource()
		if err != nil {
			tok := token.NewSimple()
			sub.OnSubscribe(tok)
			sub.OnError(err)
			return tok
		}

		lc := newLifecycleCoordinator(func() { dispose(res) })
		composite := token.NewComposite()
		composite.Add(token.New(lc.Close))

		wrapped := &usingSubscriber[T]{downstream: sub, lc: lc, eager: eager, outerTok: composite}
		sub.OnSubscribe(composite)

		innerTok := observableFactory(res).Subscribe(wrapped)
		composite.Add(innerTok)
		return composite
	}}
}

type usingSubscriber[T any] struct {
	downstream Subscriber[T]
	lc         *lifecycleCoordinator
	eager      bool
	outerTok   token.Token
}

func (u *usingSubscriber[T]) OnSubscribe(token.Token) {}

func (u *usingSubscriber[T]) OnNext(v T) {
	if u.outerTok.IsDisposed() {
		return
	}
	u.downstream.OnNext(v)
}

func (u *usingSubscriber[T]) OnComplete() {
	if u.outerTok.IsDisposed() {
		return
	}
	if u.eager {
		u.lc.Close()
		u.downstream.OnComplete()
		return
	}
	u.downstream.OnComplete()
	u.lc.Close()
}

func (u *usingSubscriber[T]) OnError(err error) {
	if u.outerTok.IsDisposed() {
		reportUndeliverable(err)
		return
	}
	if u.eager {
		u.lc.Close()
		u.downstream.OnError(err)
		return
	}
	u.downstream.OnError(err)
	u.lc.Close()
}
