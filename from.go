package rx

import "github.com/flowrx/rx/token"

// FromSlice emits each element of items in order, then completes.
func FromSlice[T any](items []T) Observable[T] {
	return Just(items...)
}

// FromFunc builds an Observable by calling next repeatedly until it
// returns ok == false (§6, "iterable (finite or infinite)"). Per spec
// §9 Open Question 3, the distinction between a "null-allowed" state
// and a "null-forbidden" signal is reproduced here: next may return a
// zero T alongside ok == false (end of sequence, never delivered), but
// can never smuggle a zero T through as a real onNext value without ok
// being true.
func FromFunc[T any](next func() (T, bool)) Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		tok := token.NewSimple()
		sub.OnSubscribe(tok)
		for {
			if tok.IsDisposed() {
				return tok
			}
			v, ok := next()
			if !ok {
				break
			}
			sub.OnNext(v)
		}
		if !tok.IsDisposed() {
			sub.OnComplete()
		}
		return tok
	}}
}
