package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleDisposeIdempotent(t *testing.T) {
	var calls int
	tok := New(func() { calls++ })

	assert.False(t, tok.IsDisposed())
	tok.Dispose()
	tok.Dispose()
	assert.True(t, tok.IsDisposed())
	assert.Equal(t, 1, calls)
}

func TestSerialReplaceDisposesPrevious(t *testing.T) {
	s := NewSerial()

	var firstDisposed bool
	s.SetChild(New(func() { firstDisposed = true }))

	var secondDisposed bool
	s.SetChild(New(func() { secondDisposed = true }))

	assert.True(t, firstDisposed)
	assert.False(t, secondDisposed)

	s.Dispose()
	assert.True(t, secondDisposed)
}

func TestSerialDisposesFutureChild(t *testing.T) {
	s := NewSerial()
	s.Dispose()

	var disposed bool
	s.SetChild(New(func() { disposed = true }))

	assert.True(t, disposed)
}

func TestCompositeDisposesAllOnce(t *testing.T) {
	c := NewComposite()

	var n int
	for i := 0; i < 3; i++ {
		c.Add(New(func() { n++ }))
	}

	c.Dispose()
	c.Dispose()

	assert.Equal(t, 3, n)
	assert.True(t, c.IsDisposed())
}

func TestCompositeAddAfterDisposeDisposesImmediately(t *testing.T) {
	c := NewComposite()
	c.Dispose()

	var disposed bool
	c.Add(New(func() { disposed = true }))

	assert.True(t, disposed)
}

func TestCompositeRemoveStopsTracking(t *testing.T) {
	c := NewComposite()
	child := New(func() {})
	c.Add(child)
	assert.Equal(t, 1, c.Size())

	c.Remove(child)
	assert.Equal(t, 0, c.Size())
}
