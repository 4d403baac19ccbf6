package rx

import (
	"sync"

	"github.com/flowrx/rx/token"
)

// ConnectableObservable shares one upstream subscription among many
// downstreams, deferring that subscription until Connect is called
// (§4.11). Each downstream gets its own replaySubscription draining
// the shared replayBuffer from its own cursor.
type ConnectableObservable[T any] struct {
	state *connectableState[T]
}

type connectableState[T any] struct {
	mu        sync.Mutex
	source    Observable[T]
	buffer    *replayBuffer[T]
	connected bool
	upstream  token.Token
	subs      []*replaySubscription[T]
}

func newConnectable[T any](src Observable[T], policy ReplayPolicy) *ConnectableObservable[T] {
	return &ConnectableObservable[T]{state: &connectableState[T]{
		source: src,
		buffer: newReplayBuffer[T](policy),
	}}
}

// Subscribe registers downstream against the shared buffer. It never
// itself subscribes to the source — call Connect for that.
func (c *ConnectableObservable[T]) Subscribe(downstream Subscriber[T]) token.Token {
	st := c.state
	sub := &replaySubscription[T]{downstream: downstream, cursor: st.buffer.startCursor()}

	disposeTok := token.New(func() {
		st.mu.Lock()
		for i, s := range st.subs {
			if s == sub {
				st.subs = append(st.subs[:i], st.subs[i+1:]...)
				break
			}
		}
		st.mu.Unlock()
	})
	sub.disposed = disposeTok

	st.mu.Lock()
	st.subs = append(st.subs, sub)
	st.mu.Unlock()

	downstream.OnSubscribe(disposeTok)
	sub.signal()
	return disposeTok
}

// Connect subscribes once to the source; later calls are no-ops that
// return the first call's token.
func (c *ConnectableObservable[T]) Connect() token.Token {
	st := c.state
	st.mu.Lock()
	if st.connected {
		tok := st.upstream
		st.mu.Unlock()
		return tok
	}
	st.connected = true
	st.mu.Unlock()

	upTok := st.source.Subscribe(&connectableUpstream[T]{state: st})

	st.mu.Lock()
	st.upstream = upTok
	st.mu.Unlock()
	return upTok
}

// replaySubscription drains a replayBuffer's node chain from its own
// cursor to one downstream, serialized by a drainLoop (§4.1.3, §4.11).
type replaySubscription[T any] struct {
	downstream Subscriber[T]
	cursor     *replayNode[T]
	drain      drainLoop
	disposed   token.Token
}

func (r *replaySubscription[T]) signal() {
	r.drain.trigger(func() {
		for {
			if r.disposed.IsDisposed() {
				return
			}
			nxt := r.cursor.next.Load()
			if nxt == nil {
				return
			}
			r.cursor = nxt
			if nxt.terminal {
				if nxt.err != nil {
					r.downstream.OnError(nxt.err)
				} else {
					r.downstream.OnComplete()
				}
				return
			}
			r.downstream.OnNext(nxt.val)
		}
	})
}

type connectableUpstream[T any] struct {
	state *connectableState[T]
}

func (u *connectableUpstream[T]) OnSubscribe(token.Token) {}

func (u *connectableUpstream[T]) OnNext(v T) {
	st := u.state
	st.buffer.push(v)
	u.signalAll()
}

func (u *connectableUpstream[T]) OnError(err error) { u.terminal(err) }
func (u *connectableUpstream[T]) OnComplete()       { u.terminal(nil) }

func (u *connectableUpstream[T]) terminal(err error) {
	st := u.state
	st.buffer.finish(err)
	u.signalAll()
}

func (u *connectableUpstream[T]) signalAll() {
	st := u.state
	st.mu.Lock()
	subs := append([]*replaySubscription[T](nil), st.subs...)
	st.mu.Unlock()
	for _, s := range subs {
		s.signal()
	}
}
