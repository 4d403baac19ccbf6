package rx

import "github.com/flowrx/rx/token"

// Cache subscribes to src at most once, on the first subscription to
// the returned Observable, and replays every item to that and every
// later subscriber (§4.11 "cache": replay-unbounded with auto-connect).
func Cache[T any](src Observable[T]) Observable[T] {
	c := newConnectable(src, Unbounded())
	return Observable[T]{subscribeFn: func(downstream Subscriber[T]) token.Token {
		tok := c.Subscribe(downstream)
		c.Connect()
		return tok
	}}
}
