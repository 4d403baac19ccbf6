package rx

import "github.com/flowrx/rx/token"

// Empty completes immediately without emitting any value.
func Empty[T any]() Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		tok := token.NewSimple()
		sub.OnSubscribe(tok)
		sub.OnComplete()
		return tok
	}}
}

// Never neither emits nor terminates; only disposal ends it.
func Never[T any]() Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		tok := token.NewSimple()
		sub.OnSubscribe(tok)
		return tok
	}}
}

// ThrowError immediately errors with err.
func ThrowError[T any](err error) Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		tok := token.NewSimple()
		sub.OnSubscribe(tok)
		sub.OnError(err)
		return tok
	}}
}
