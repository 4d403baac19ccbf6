package rx

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/flowrx/rx/token"
)

// ToSlice blocks the calling goroutine until src terminates, collecting
// every emitted value (§6 "collect-into-container"). It owns the
// subscription end to end, the way the teacher's RunAll owns a worker
// batch: subscribe, wait for exactly one terminal signal, return.
func ToSlice[T any](ctx context.Context, src Observable[T]) ([]T, error) {
	var (
		values []T
		result error
	)
	done := make(chan struct{})
	tok := src.Subscribe(NewObserver(Observer[T]{
		Next: func(v T) { values = append(values, v) },
		Error: func(err error) {
			result = err
			close(done)
		},
		Complete: func() { close(done) },
	}))

	select {
	case <-done:
	case <-ctx.Done():
		tok.Dispose()
		return values, ctx.Err()
	}
	return values, result
}

// BlockingForEach subscribes, invokes onNext for every value on the
// goroutine that delivers it, and blocks the calling goroutine until
// termination (§6 "forEach").
func BlockingForEach[T any](ctx context.Context, src Observable[T], onNext func(T)) error {
	_, err := ToSlice(ctx, Map(src, func(v T) struct{} {
		onNext(v)
		return struct{}{}
	}))
	return err
}

// BlockingSubscribe subscribes src, delivering every signal to sub,
// and blocks until termination or ctx cancellation — whichever comes
// first — disposing the subscription on cancellation. It mirrors the
// teacher's RunStream forwarder/Close pairing, expressed over an
// errgroup instead of a hand-rolled done channel plus WaitGroup.
func BlockingSubscribe[T any](ctx context.Context, src Observable[T], sub Subscriber[T]) error {
	done := make(chan error, 1)
	tok := src.Subscribe(&blockingWrapper[T]{downstream: sub, done: done})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case err := <-done:
			return err
		case <-gctx.Done():
			tok.Dispose()
			return gctx.Err()
		}
	})
	return g.Wait()
}

type blockingWrapper[T any] struct {
	downstream Subscriber[T]
	done       chan error
}

func (b *blockingWrapper[T]) OnSubscribe(t token.Token) { b.downstream.OnSubscribe(t) }
func (b *blockingWrapper[T]) OnNext(v T)                { b.downstream.OnNext(v) }
func (b *blockingWrapper[T]) OnError(err error) {
	b.downstream.OnError(err)
	b.done <- err
}
func (b *blockingWrapper[T]) OnComplete() {
	b.downstream.OnComplete()
	b.done <- nil
}
