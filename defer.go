package rx

import "github.com/flowrx/rx/token"

// Defer constructs a fresh Observable per subscription by calling
// factory at Subscribe time, so each subscriber gets independent
// upstream state (§2.5 "defer").
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		return factory().Subscribe(sub)
	}}
}
