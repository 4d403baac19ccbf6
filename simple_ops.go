package rx

import "github.com/flowrx/rx/token"

// Map transforms each value with fn.
func Map[T, R any](src Observable[T], fn func(T) R) Observable[R] {
	return lift(src, func(downstream Subscriber[R]) Subscriber[T] {
		return &mapSubscriber[T, R]{downstream: downstream, fn: fn}
	})
}

type mapSubscriber[T, R any] struct {
	downstream Subscriber[R]
	fn         func(T) R
}

func (s *mapSubscriber[T, R]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *mapSubscriber[T, R]) OnNext(v T)                { s.downstream.OnNext(s.fn(v)) }
func (s *mapSubscriber[T, R]) OnError(err error)         { s.downstream.OnError(err) }
func (s *mapSubscriber[T, R]) OnComplete()               { s.downstream.OnComplete() }

// Filter passes through only values for which pred returns true.
func Filter[T any](src Observable[T], pred func(T) bool) Observable[T] {
	return lift(src, func(downstream Subscriber[T]) Subscriber[T] {
		return &filterSubscriber[T]{downstream: downstream, pred: pred}
	})
}

type filterSubscriber[T any] struct {
	downstream Subscriber[T]
	pred       func(T) bool
}

func (s *filterSubscriber[T]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *filterSubscriber[T]) OnNext(v T) {
	if s.pred(v) {
		s.downstream.OnNext(v)
	}
}
func (s *filterSubscriber[T]) OnError(err error) { s.downstream.OnError(err) }
func (s *filterSubscriber[T]) OnComplete()       { s.downstream.OnComplete() }

// Scan emits every intermediate accumulator value, seeded by seed.
func Scan[T, A any](src Observable[T], seed A, fn func(A, T) A) Observable[A] {
	return lift(src, func(downstream Subscriber[A]) Subscriber[T] {
		return &scanSubscriber[T, A]{downstream: downstream, fn: fn, acc: seed}
	})
}

type scanSubscriber[T, A any] struct {
	downstream Subscriber[A]
	fn         func(A, T) A
	acc        A
}

func (s *scanSubscriber[T, A]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *scanSubscriber[T, A]) OnNext(v T) {
	s.acc = s.fn(s.acc, v)
	s.downstream.OnNext(s.acc)
}
func (s *scanSubscriber[T, A]) OnError(err error) { s.downstream.OnError(err) }
func (s *scanSubscriber[T, A]) OnComplete()       { s.downstream.OnComplete() }

// Reduce emits a single final accumulator value on completion.
func Reduce[T, A any](src Observable[T], seed A, fn func(A, T) A) Observable[A] {
	return Observable[A]{subscribeFn: func(downstream Subscriber[A]) token.Token {
		return src.Subscribe(&reduceSubscriber[T, A]{downstream: downstream, fn: fn, acc: seed})
	}}
}

type reduceSubscriber[T, A any] struct {
	downstream Subscriber[A]
	fn         func(A, T) A
	acc        A
}

func (s *reduceSubscriber[T, A]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *reduceSubscriber[T, A]) OnNext(v T)                { s.acc = s.fn(s.acc, v) }
func (s *reduceSubscriber[T, A]) OnError(err error)         { s.downstream.OnError(err) }
func (s *reduceSubscriber[T, A]) OnComplete() {
	s.downstream.OnNext(s.acc)
	s.downstream.OnComplete()
}

// Take emits at most n values, disposes upstream, then completes.
func Take[T any](src Observable[T], n int) Observable[T] {
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		sub := &takeSubscriber[T]{downstream: downstream, remaining: n}
		tok := src.Subscribe(sub)
		sub.upstream = tok
		if n <= 0 {
			tok.Dispose()
		}
		return tok
	}}
}

type takeSubscriber[T any] struct {
	downstream Subscriber[T]
	remaining  int
	upstream   token.Token
	done       bool
}

func (s *takeSubscriber[T]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *takeSubscriber[T]) OnNext(v T) {
	if s.done || s.remaining <= 0 {
		return
	}
	s.remaining--
	s.downstream.OnNext(v)
	if s.remaining == 0 {
		s.done = true
		if s.upstream != nil {
			s.upstream.Dispose()
		}
		s.downstream.OnComplete()
	}
}
func (s *takeSubscriber[T]) OnError(err error) {
	if s.done {
		reportUndeliverable(err)
		return
	}
	s.downstream.OnError(err)
}
func (s *takeSubscriber[T]) OnComplete() {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnComplete()
}

// Skip drops the first n values, then passes through the rest.
func Skip[T any](src Observable[T], n int) Observable[T] {
	return lift(src, func(downstream Subscriber[T]) Subscriber[T] {
		return &skipSubscriber[T]{downstream: downstream, remaining: n}
	})
}

type skipSubscriber[T any] struct {
	downstream Subscriber[T]
	remaining  int
}

func (s *skipSubscriber[T]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *skipSubscriber[T]) OnNext(v T) {
	if s.remaining > 0 {
		s.remaining--
		return
	}
	s.downstream.OnNext(v)
}
func (s *skipSubscriber[T]) OnError(err error) { s.downstream.OnError(err) }
func (s *skipSubscriber[T]) OnComplete()       { s.downstream.OnComplete() }

// TakeLast retains only the most recent n values and emits them, in
// order, once the source completes. Unlike TakeLastTimed (§4.10) it
// has no time bound — a plain ring buffer of the last n values.
func TakeLast[T any](src Observable[T], n int) Observable[T] {
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		return src.Subscribe(&takeLastPlainSubscriber[T]{downstream: downstream, n: n})
	}}
}

type takeLastPlainSubscriber[T any] struct {
	downstream Subscriber[T]
	n          int
	buf        []T
}

func (s *takeLastPlainSubscriber[T]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *takeLastPlainSubscriber[T]) OnNext(v T) {
	if s.n <= 0 {
		return
	}
	s.buf = append(s.buf, v)
	if len(s.buf) > s.n {
		s.buf = s.buf[len(s.buf)-s.n:]
	}
}
func (s *takeLastPlainSubscriber[T]) OnError(err error) { s.downstream.OnError(err) }
func (s *takeLastPlainSubscriber[T]) OnComplete() {
	for _, v := range s.buf {
		s.downstream.OnNext(v)
	}
	s.downstream.OnComplete()
}

// OnErrorReturn substitutes a fallback value followed by normal
// completion when upstream errors, instead of propagating the error.
func OnErrorReturn[T any](src Observable[T], fallback func(error) T) Observable[T] {
	return lift(src, func(downstream Subscriber[T]) Subscriber[T] {
		return &onErrorReturnSubscriber[T]{downstream: downstream, fallback: fallback}
	})
}

type onErrorReturnSubscriber[T any] struct {
	downstream Subscriber[T]
	fallback   func(error) T
}

func (s *onErrorReturnSubscriber[T]) OnSubscribe(t token.Token) { s.downstream.OnSubscribe(t) }
func (s *onErrorReturnSubscriber[T]) OnNext(v T)                { s.downstream.OnNext(v) }
func (s *onErrorReturnSubscriber[T]) OnError(err error) {
	s.downstream.OnNext(s.fallback(err))
	s.downstream.OnComplete()
}
func (s *onErrorReturnSubscriber[T]) OnComplete() { s.downstream.OnComplete() }
