package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowrx/rx"
	"github.com/flowrx/rx/scheduler/virtual"
)

// P1: every subscription observes onSubscribe (onNext)* (onComplete |
// onError)?, in that relative order, regardless of which terminal (if
// any) fires.
func TestSignalGrammar_SubscribeThenValuesThenOneTerminal(t *testing.T) {
	cases := []struct {
		name string
		src  rx.Observable[int]
	}{
		{"complete", rx.Range(1, 3)},
		{"error", rx.ThrowError[int](errors.New("boom"))},
		{"empty", rx.Empty[int]()},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var trace []string
			c.src.Subscribe(rx.NewObserver(rx.Observer[int]{
				Next:     func(int) { trace = append(trace, "next") },
				Error:    func(error) { trace = append(trace, "error") },
				Complete: func() { trace = append(trace, "complete") },
			}))

			if len(trace) > 0 {
				terminal := trace[len(trace)-1]
				assert.True(t, terminal == "complete" || terminal == "error")
				for _, step := range trace[:len(trace)-1] {
					assert.Equal(t, "next", step)
				}
			}
		})
	}
}

// P2: once a terminal has fired, no further signal reaches the
// downstream subscriber, even if the (misbehaving) source tries.
func TestTerminalFinality_NoSignalAfterTerminal(t *testing.T) {
	var afterTerminal bool
	src := rx.Create(func(e rx.Emitter[int]) {
		e.OnNext(1)
		e.OnComplete()
		e.OnNext(2) // must be swallowed
		e.OnError(errors.New("also swallowed"))
	})

	count := 0
	src.Subscribe(rx.NewObserver(rx.Observer[int]{
		Next:     func(int) { count++ },
		Error:    func(error) { afterTerminal = true },
		Complete: func() {},
	}))

	assert.Equal(t, 1, count)
	assert.False(t, afterTerminal)
}

// P4: after dispose, delivery stops permanently — no further onNext
// arrives no matter how far the clock advances afterward.
func TestCancellationQuiescence_StopsDeliveryAfterDispose(t *testing.T) {
	sch := virtual.New()
	var count int
	tok := rx.Interval(100*time.Millisecond, sch).Subscribe(rx.NewObserver(rx.Observer[int64]{
		Next: func(int64) { count++ },
	}))

	sch.AdvanceBy(250 * time.Millisecond)
	countAtDispose := count
	tok.Dispose()

	sch.AdvanceBy(time.Second)
	assert.True(t, tok.IsDisposed())
	assert.Equal(t, countAtDispose, count)
}

// P5: a literal nil value handed to a Create emitter is never
// delivered as onNext — it surfaces as ErrNullSignal instead.
func TestNonNullValues_NilFromCreateBecomesError(t *testing.T) {
	src := rx.Create(func(e rx.Emitter[*int]) {
		e.OnNext(nil)
		e.OnComplete()
	})

	var gotErr error
	var gotNext bool
	src.Subscribe(rx.NewObserver(rx.Observer[*int]{
		Next:  func(*int) { gotNext = true },
		Error: func(err error) { gotErr = err },
	}))

	assert.False(t, gotNext)
	require.Error(t, gotErr)
	assert.ErrorIs(t, gotErr, rx.ErrNullSignal)
}

// P6: map(identity) and filter(always-true) are no-ops.
func TestIdentityLaws(t *testing.T) {
	ctx := context.Background()

	mapped, err := rx.ToSlice(ctx, rx.Map(rx.Range(1, 5), func(v int) int { return v }))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, mapped)

	filtered, err := rx.ToSlice(ctx, rx.Filter(rx.Range(1, 5), func(int) bool { return true }))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, filtered)
}

// P7: merge is associative up to bag-equality of delivered values.
func TestMergeAssociativity(t *testing.T) {
	ctx := context.Background()
	a, b, c := rx.Just(1, 2), rx.Just(3, 4), rx.Just(5, 6)

	left, err := rx.ToSlice(ctx, rx.Merge(rx.Merge(a, b), c))
	require.NoError(t, err)

	a2, b2, c2 := rx.Just(1, 2), rx.Just(3, 4), rx.Just(5, 6)
	right, err := rx.ToSlice(ctx, rx.Merge(a2, rx.Merge(b2, c2)))
	require.NoError(t, err)

	assert.ElementsMatch(t, left, right)
}
