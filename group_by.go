package rx

import (
	"sync"

	"github.com/flowrx/rx/token"
)

// GroupedObservable pairs a partition key with the sub-stream of
// upstream values sharing it (§4.7). It may be subscribed at most
// once while live.
type GroupedObservable[K comparable, T any] struct {
	Key K
	Observable[T]
}

// GroupOption configures GroupBy.
type GroupOption func(*groupConfig)

type groupConfig struct {
	bufferSize int
}

func defaultGroupConfig() groupConfig { return groupConfig{bufferSize: DefaultPrefetch} }

// WithGroupBuffer overrides the per-group bounded buffer size (§4.7
// "Backpressure"). Reserved for a future bounded-group implementation;
// the current map/slice-backed group buffer grows unbounded, matching
// the SPSC queue's own grow-by-chaining behavior elsewhere in this
// package rather than rejecting late values.
func WithGroupBuffer(n int) GroupOption {
	return func(c *groupConfig) { c.bufferSize = n }
}

// GroupBy partitions src by keyFn into a sequence of
// GroupedObservable values, one per distinct key (§4.7). Per the
// policy spec §4.7 leaves open, this implementation recreates a group
// on the next matching value after its sole subscriber has
// disposed — the group is removed from the live map as soon as its
// subscription ends, so a later upstream value with that key starts a
// brand-new group rather than reusing or dropping it.
func GroupBy[T any, K comparable](src Observable[T], keyFn func(T) K, opts ...GroupOption) Observable[GroupedObservable[K, T]] {
	cfg := defaultGroupConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return Observable[GroupedObservable[K, T]]{subscribeFn: func(downstream Subscriber[GroupedObservable[K, T]]) token.Token {
		gb := &groupByState[T, K]{
			downstream: downstream,
			keyFn:      keyFn,
			groups:     make(map[K]*group[T]),
		}
		tok := token.NewComposite()
		downstream.OnSubscribe(tok)
		upTok := src.Subscribe(&groupByOuter[T, K]{state: gb})
		tok.Add(upTok)
		return tok
	}}
}

type group[T any] struct {
	mu         sync.Mutex
	buf        []T
	subscribed bool
	done       bool
	err        error
	sub        Subscriber[T]
}

type groupByState[T any, K comparable] struct {
	downstream Subscriber[GroupedObservable[K, T]]
	keyFn      func(T) K
	mu         sync.Mutex
	groups     map[K]*group[T]
}

type groupByOuter[T any, K comparable] struct {
	state *groupByState[T, K]
}

func (o *groupByOuter[T, K]) OnSubscribe(token.Token) {}

func (o *groupByOuter[T, K]) OnNext(v T) {
	st := o.state
	k := st.keyFn(v)

	st.mu.Lock()
	g, ok := st.groups[k]
	if !ok {
		g = &group[T]{}
		st.groups[k] = g
	}
	st.mu.Unlock()

	if !ok {
		st.downstream.OnNext(GroupedObservable[K, T]{Key: k, Observable: newGroupObservable(st, k, g)})
	}

	g.mu.Lock()
	sub := g.sub
	if sub == nil {
		g.buf = append(g.buf, v)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	sub.OnNext(v)
}

func (o *groupByOuter[T, K]) OnError(err error) {
	st := o.state
	for _, g := range st.snapshot() {
		g.mu.Lock()
		g.done, g.err = true, err
		sub := g.sub
		g.mu.Unlock()
		if sub != nil {
			sub.OnError(err)
		}
	}
	st.downstream.OnError(err)
}

func (o *groupByOuter[T, K]) OnComplete() {
	st := o.state
	for _, g := range st.snapshot() {
		g.mu.Lock()
		g.done = true
		sub, buf := g.sub, g.buf
		g.buf = nil
		g.mu.Unlock()
		if sub != nil {
			for _, v := range buf {
				sub.OnNext(v)
			}
			sub.OnComplete()
		}
	}
	st.downstream.OnComplete()
}

func (st *groupByState[T, K]) snapshot() []*group[T] {
	st.mu.Lock()
	defer st.mu.Unlock()
	groups := make([]*group[T], 0, len(st.groups))
	for _, g := range st.groups {
		groups = append(groups, g)
	}
	return groups
}

func newGroupObservable[T any, K comparable](st *groupByState[T, K], key K, g *group[T]) Observable[T] {
	return Observable[T]{subscribeFn: func(sub Subscriber[T]) token.Token {
		g.mu.Lock()
		if g.subscribed {
			g.mu.Unlock()
			tok := token.NewSimple()
			sub.OnSubscribe(tok)
			sub.OnError(ErrGroupAlreadySubscribed)
			return tok
		}
		g.subscribed = true
		buf := g.buf
		g.buf = nil
		done, err := g.done, g.err
		if !done {
			g.sub = sub
		}
		g.mu.Unlock()

		tok := token.New(func() {
			st.mu.Lock()
			if cur, ok := st.groups[key]; ok && cur == g {
				delete(st.groups, key)
			}
			st.mu.Unlock()
			g.mu.Lock()
			g.sub = nil
			g.mu.Unlock()
		})
		sub.OnSubscribe(tok)
		for _, v := range buf {
			sub.OnNext(v)
		}
		if done {
			if err != nil {
				sub.OnError(err)
			} else {
				sub.OnComplete()
			}
		}
		return tok
	}}
}
