package spscq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfferPollPreservesOrder(t *testing.T) {
	q := New[int](4)

	for i := 0; i < 100; i++ {
		q.Offer(i)
	}

	for i := 0; i < 100; i++ {
		v, ok := q.Poll()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}

	_, ok := q.Poll()
	assert.False(t, ok)
}

func TestGrowsAcrossSegments(t *testing.T) {
	q := New[int](4) // rounds up to 8

	// offer well past one segment's worth of slots to force linking.
	const n = 500
	for i := 0; i < n; i++ {
		q.Offer(i)
	}

	for i := 0; i < n; i++ {
		v, ok := q.Poll()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	q := New[string](4)
	q.Offer("a")
	q.Offer("b")

	v, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = q.Poll()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestOfferPairLandsTogether(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 20; i++ {
		q.OfferPair(i*2, i*2+1)
	}

	for i := 0; i < 40; i++ {
		v, ok := q.Poll()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestClearDrains(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 10; i++ {
		q.Offer(i)
	}
	q.Clear()
	assert.True(t, q.IsEmpty())
}

func TestConcurrentProducerConsumerIsPrefixOrdered(t *testing.T) {
	q := New[int](16)
	const n = 20000

	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			q.Offer(i)
		}
		close(done)
	}()

	next := 0
	for next < n {
		v, ok := q.Poll()
		if !ok {
			continue
		}
		assert.Equal(t, next, v)
		next++
	}
	<-done
}
