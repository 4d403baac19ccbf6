package rx

import "github.com/flowrx/rx/token"

// Range emits the count consecutive integers starting at start, then
// completes (§2.5, §8 scenario 1).
func Range(start, count int) Observable[int] {
	return Observable[int]{subscribeFn: func(sub Subscriber[int]) token.Token {
		tok := token.NewSimple()
		sub.OnSubscribe(tok)
		for i := 0; i < count; i++ {
			if tok.IsDisposed() {
				return tok
			}
			sub.OnNext(start + i)
		}
		if !tok.IsDisposed() {
			sub.OnComplete()
		}
		return tok
	}}
}
