package rx

import "github.com/flowrx/rx/token"

// Just emits each of the given values in order, then completes.
func Just[T any](values ...T) Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		tok := token.NewSimple()
		sub.OnSubscribe(tok)
		for _, v := range values {
			if tok.IsDisposed() {
				return tok
			}
			sub.OnNext(v)
		}
		if !tok.IsDisposed() {
			sub.OnComplete()
		}
		return tok
	}}
}
