package rx

// Publish returns a ConnectableObservable that shares one subscription
// to src among every downstream; each downstream observes only items
// emitted after it subscribes — late subscribers miss earlier items
// (§4.11 "publish").
func Publish[T any](src Observable[T]) *ConnectableObservable[T] {
	return newConnectable(src, NoReplay())
}

// Replay returns a ConnectableObservable that retains items from src
// per policy and replays the retained buffer to each new subscriber
// before switching it to live delivery (§4.11 "replay(bufferPolicy)").
func Replay[T any](src Observable[T], policy ReplayPolicy) *ConnectableObservable[T] {
	return newConnectable(src, policy)
}
