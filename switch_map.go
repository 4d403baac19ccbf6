package rx

import "github.com/flowrx/rx/token"

// SwitchMap projects each upstream value to an inner Observable and
// emits only the latest inner's values, disposing any prior inner as
// soon as a new one begins (§4.9, §8 scenario 8).
func SwitchMap[T, R any](src Observable[T], proj func(T) Observable[R]) Observable[R] {
	return Observable[R]{subscribeFn: func(downstream Subscriber[R]) token.Token {
		sm := &switchMapState[T, R]{downstream: downstream, proj: proj, current: token.NewSerial()}
		composite := token.NewComposite()
		composite.Add(sm.current)
		downstream.OnSubscribe(composite)

		upTok := src.Subscribe(&switchMapOuter[T, R]{state: sm})
		composite.Add(upTok)
		return composite
	}}
}

type switchMapState[T, R any] struct {
	downstream   Subscriber[R]
	proj         func(T) Observable[R]
	current      *token.Serial
	upstreamDone bool
	innerDone    bool
	finished     bool
	generation   int
}

func (s *switchMapState[T, R]) maybeComplete() {
	if s.finished || !s.upstreamDone || !s.innerDone {
		return
	}
	s.finished = true
	s.downstream.OnComplete()
}

type switchMapOuter[T, R any] struct {
	state *switchMapState[T, R]
}

func (o *switchMapOuter[T, R]) OnSubscribe(token.Token) {}

func (o *switchMapOuter[T, R]) OnNext(v T) {
	st := o.state
	if st.finished {
		return
	}
	st.generation++
	gen := st.generation
	st.innerDone = false
	innerSub := &switchMapInner[T, R]{state: st, gen: gen}
	innerTok := st.proj(v).Subscribe(innerSub)
	st.current.SetChild(innerTok)
}

func (o *switchMapOuter[T, R]) OnError(err error) {
	st := o.state
	if st.finished {
		reportUndeliverable(err)
		return
	}
	st.finished = true
	st.downstream.OnError(err)
}

func (o *switchMapOuter[T, R]) OnComplete() {
	st := o.state
	st.upstreamDone = true
	if st.generation == 0 {
		st.innerDone = true
	}
	st.maybeComplete()
}

type switchMapInner[T, R any] struct {
	state *switchMapState[T, R]
	gen   int
}

func (i *switchMapInner[T, R]) OnSubscribe(token.Token) {}

func (i *switchMapInner[T, R]) OnNext(v R) {
	st := i.state
	if st.finished || st.generation != i.gen {
		return
	}
	st.downstream.OnNext(v)
}

func (i *switchMapInner[T, R]) OnError(err error) {
	st := i.state
	if st.finished || st.generation != i.gen {
		reportUndeliverable(err)
		return
	}
	st.finished = true
	st.downstream.OnError(err)
}

func (i *switchMapInner[T, R]) OnComplete() {
	st := i.state
	if st.generation != i.gen {
		return
	}
	st.innerDone = true
	st.maybeComplete()
}
