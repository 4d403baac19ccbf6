package rx

import (
	"reflect"

	"github.com/flowrx/rx/token"
)

// Observable is a push-based source of values of type T (§3.2). Each
// call to Subscribe begins an independent execution, unless the
// Observable was built by Publish/Replay/Cache, which share a single
// upstream subscription among their subscribers.
type Observable[T any] struct {
	subscribeFn func(Subscriber[T]) token.Token
}

// Subscribe begins an execution, delivering signals to sub following
// the grammar onSubscribe (onNext)* (onComplete|onError)? (§3.1), and
// returns the token the caller uses to cancel.
func (o Observable[T]) Subscribe(sub Subscriber[T]) token.Token {
	return o.subscribeFn(sub)
}

// SubscribeFunc is a convenience over Subscribe for callers that only
// want an Observer's optional callbacks rather than a full Subscriber.
func (o Observable[T]) SubscribeFunc(obs Observer[T]) token.Token {
	return o.Subscribe(NewObserver(obs))
}

// lift is the constructor most one-input operators use: it subscribes
// to src with a Subscriber built by newSub, which wraps downstream.
func lift[T, R any](src Observable[T], newSub func(downstream Subscriber[R]) Subscriber[T]) Observable[R] {
	return Observable[R]{subscribeFn: func(downstream Subscriber[R]) token.Token {
		return src.Subscribe(newSub(downstream))
	}}
}

// Emitter is the producer-facing handle passed to a Create body.
type Emitter[T any] interface {
	OnNext(v T)
	OnError(err error)
	OnComplete()
	IsDisposed() bool
}

// Create builds an Observable from a producer body invoked with an
// Emitter on every Subscribe call (§2.5 "create"). The body runs
// synchronously on the subscribing goroutine; it may retain the
// Emitter and call it later from another goroutine, since OnNext
// itself does not assume a particular caller.
func Create[T any](body func(Emitter[T])) Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		tok := token.NewSimple()
		sub.OnSubscribe(tok)
		body(&emitter[T]{sub: sub, tok: tok})
		return tok
	}}
}

type emitter[T any] struct {
	sub  Subscriber[T]
	tok  token.Token
	done bool
}

func (e *emitter[T]) OnNext(v T) {
	if e.done || e.tok.IsDisposed() {
		return
	}
	if isNullSignal(v) {
		e.OnError(ErrNullSignal)
		return
	}
	e.sub.OnNext(v)
}

// isNullSignal reports whether v is a nil value of a kind that can be
// nil (§8 P5: no onNext delivers a null-signal). Non-nilable kinds —
// every ordinary value and struct type — never match, since a "null
// signal" is specifically a Go reference-like value that is absent,
// not merely a zero value (Open Question 3 keeps zero values legal).
func isNullSignal(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

func (e *emitter[T]) OnError(err error) {
	if e.done || e.tok.IsDisposed() {
		reportUndeliverable(err)
		return
	}
	e.done = true
	e.sub.OnError(err)
}

func (e *emitter[T]) OnComplete() {
	if e.done || e.tok.IsDisposed() {
		return
	}
	e.done = true
	e.sub.OnComplete()
}

func (e *emitter[T]) IsDisposed() bool { return e.tok.IsDisposed() }
