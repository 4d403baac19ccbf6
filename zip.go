package rx

import (
	"sync"

	"github.com/flowrx/rx/token"
)

// zipCore combines N sources into one output via combine, applied
// lockstep to the i-th item of each source (§4.8): it inspects every
// per-source queue head and, once all are non-empty, dequeues one
// from each and emits the combination. It completes once any source
// has completed and its queue has drained. The cursor-plus-buffer
// bookkeeping is adapted from the teacher's reorderer/preserve-order
// coordinator, generalized from "flush a contiguous index run" to
// "flush while every source has a head item".
func zipCore[R any](sources []Observable[any], combine func([]any) R) Observable[R] {
	return Observable[R]{subscribeFn: func(downstream Subscriber[R]) token.Token {
		n := len(sources)
		z := &zipState[R]{
			n:          n,
			queues:     make([][]any, n),
			sourceDone: make([]bool, n),
			downstream: downstream,
			combine:    combine,
			children:   token.NewComposite(),
		}
		downstream.OnSubscribe(z.children)
		for i, src := range sources {
			tok := src.Subscribe(&zipInner[R]{zip: z, idx: i})
			z.children.Add(tok)
		}
		return z.children
	}}
}

type zipState[R any] struct {
	mu         sync.Mutex
	n          int
	queues     [][]any
	sourceDone []bool
	downstream Subscriber[R]
	combine    func([]any) R
	children   *token.Composite
	finished   bool
}

// drainLocked emits every combination available now that every queue
// has at least one buffered item. Caller must hold mu.
func (z *zipState[R]) drainLocked() {
	for {
		for i := 0; i < z.n; i++ {
			if len(z.queues[i]) == 0 {
				return
			}
		}
		row := make([]any, z.n)
		for i := 0; i < z.n; i++ {
			row[i] = z.queues[i][0]
			z.queues[i] = z.queues[i][1:]
		}
		z.downstream.OnNext(z.combine(row))
	}
}

// checkCompleteLocked completes the output once any finished source's
// queue has drained (§4.8). Caller must hold mu.
func (z *zipState[R]) checkCompleteLocked() {
	if z.finished {
		return
	}
	for i := 0; i < z.n; i++ {
		if z.sourceDone[i] && len(z.queues[i]) == 0 {
			z.finished = true
			z.downstream.OnComplete()
			return
		}
	}
}

func (z *zipState[R]) push(idx int, v any) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.finished {
		return
	}
	z.queues[idx] = append(z.queues[idx], v)
	z.drainLocked()
	z.checkCompleteLocked()
}

func (z *zipState[R]) sourceComplete(idx int) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.sourceDone[idx] = true
	z.checkCompleteLocked()
}

func (z *zipState[R]) sourceError(err error) {
	z.mu.Lock()
	if z.finished {
		z.mu.Unlock()
		reportUndeliverable(err)
		return
	}
	z.finished = true
	z.mu.Unlock()
	z.children.Dispose()
	z.downstream.OnError(err)
}

type zipInner[R any] struct {
	zip *zipState[R]
	idx int
}

func (z *zipInner[R]) OnSubscribe(token.Token) {}
func (z *zipInner[R]) OnNext(v any)            { z.zip.push(z.idx, v) }
func (z *zipInner[R]) OnError(err error)       { z.zip.sourceError(err) }
func (z *zipInner[R]) OnComplete()             { z.zip.sourceComplete(z.idx) }

func anyOf[T any](src Observable[T]) Observable[any] {
	return lift(src, func(downstream Subscriber[any]) Subscriber[T] {
		return &anyAdapter[T]{downstream: downstream}
	})
}

type anyAdapter[T any] struct {
	downstream Subscriber[any]
}

func (a *anyAdapter[T]) OnSubscribe(t token.Token) { a.downstream.OnSubscribe(t) }
func (a *anyAdapter[T]) OnNext(v T)                { a.downstream.OnNext(v) }
func (a *anyAdapter[T]) OnError(err error)         { a.downstream.OnError(err) }
func (a *anyAdapter[T]) OnComplete()               { a.downstream.OnComplete() }

// Zip2 combines two sources pairwise with combine (§4.8, §8 scenario 6).
func Zip2[A, B, R any](a Observable[A], b Observable[B], combine func(A, B) R) Observable[R] {
	sources := []Observable[any]{anyOf(a), anyOf(b)}
	return zipCore(sources, func(row []any) R {
		return combine(row[0].(A), row[1].(B))
	})
}

// Zip3 combines three sources with combine (§4.8).
func Zip3[A, B, C, R any](a Observable[A], b Observable[B], c Observable[C], combine func(A, B, C) R) Observable[R] {
	sources := []Observable[any]{anyOf(a), anyOf(b), anyOf(c)}
	return zipCore(sources, func(row []any) R {
		return combine(row[0].(A), row[1].(B), row[2].(C))
	})
}
