// Package rx provides a push-based reactive streams runtime for
// composing asynchronous sequences of values with well-defined
// concurrency, cancellation, error, and backpressure semantics.
//
// Producers (Observable[T] values, built by the Create/Range/FromSlice
// family) emit zero or more items and then terminate with either a
// completion or an error signal. Consumers Subscribe and receive items
// serially until they cancel via the returned token.Token.
//
// Constructors
//   - Create[T](body func(Emitter[T])): user-supplied producer body.
//   - Range/FromSlice/FromFunc/Just/Empty/Never: finite and trivial
//     sources.
//   - Timer/Interval: scheduler-driven sources.
//   - Defer/Using: deferred construction and resource-bracketed sources.
//
// Operators
// The stateful operators — ObserveOn, FlatMap/Merge, GroupBy, Zip,
// SwitchMap, the time-windowed family (TakeLastTimed, SkipLastTimed,
// Debounce, ThrottleFirst, Sample, Timeout, together in timed_ops.go),
// and the multicast family (Replay/Publish/Cache) — get their own
// files and are built on the shared drain-loop, serialized
// delivery, and terminal-latch primitives in drain.go, serialized.go,
// and terminal.go. The simple one-input-one-output operators (Map,
// Filter, Scan, Reduce, Take, Skip, ...) are thin generic functions in
// simple_ops.go; their contracts follow mechanically from the
// Subscriber contract and are not separately re-derived.
//
// Concurrency
// Every subscription's signal delivery is serialized (I1): no operator
// built on this package ever calls a downstream Subscriber method
// concurrently with itself. Crossing an asynchronous boundary — an
// explicit ObserveOn, or an implicit scheduler-driven operator like
// Debounce — hands off via a scheduler.Worker or the queue-drain
// pattern, both of which preserve that guarantee.
//
// Process-wide options (the undeliverable-error hook, the metrics
// provider, and the recorded purge settings) are configured once via
// Configure; see options.go. The goroutine-pool scheduler takes its
// purge cadence from its own pool.Config, not from these options.
package rx
