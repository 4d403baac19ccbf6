// Package rx implements a push-based reactive streams runtime: the
// subscription/signal protocol, the operator execution engine, and the
// source factories that sit on top of the scheduler and SPSC queue
// packages. See doc.go for the package overview.
package rx

import "github.com/flowrx/rx/token"

// Subscriber is the downstream recipient of a stream's signals (§4.1.1).
// OnSubscribe is called exactly once, synchronously, before any other
// method, with the token the subscriber uses to cancel. OnNext delivers
// at most one value per call and must never be called after a terminal
// signal. OnError and OnComplete are mutually exclusive and each fires
// at most once per subscription (I2).
type Subscriber[T any] interface {
	OnSubscribe(t token.Token)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Observer is the public, subscription-free callback set most callers
// build by hand; Subscribe wraps it in the full Subscriber contract via
// NewObserver.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// NewObserver adapts an Observer's optional callbacks into a Subscriber.
// Nil callbacks are treated as no-ops. The returned Subscriber ignores
// the token it is handed; callers that need to cancel should hold onto
// the token.Token returned by Observable.Subscribe instead.
func NewObserver[T any](o Observer[T]) Subscriber[T] {
	return &funcSubscriber[T]{o: o}
}

type funcSubscriber[T any] struct{ o Observer[T] }

func (s *funcSubscriber[T]) OnSubscribe(token.Token) {}

func (s *funcSubscriber[T]) OnNext(v T) {
	if s.o.Next != nil {
		s.o.Next(v)
	}
}

func (s *funcSubscriber[T]) OnError(err error) {
	if s.o.Error != nil {
		s.o.Error(err)
	}
}

func (s *funcSubscriber[T]) OnComplete() {
	if s.o.Complete != nil {
		s.o.Complete()
	}
}
