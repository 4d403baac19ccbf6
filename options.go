package rx

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowrx/rx/metrics"
)

// GlobalOptions holds the three process-wide configuration knobs
// described in spec §6 and §9 (the purge policy pair and the
// undeliverable-error hook) plus the metrics provider. These are the
// ONLY process-wide mutable state this package carries; everything
// else is created per-Observable or per-Subscription.
type GlobalOptions struct {
	// PurgeEnabled mirrors the `purge-enabled` option (default true).
	PurgeEnabled bool

	// PurgePeriod mirrors `purge-period-seconds` (default 2s).
	// PurgeEnabled and PurgePeriod are stored here only: nothing in
	// this module reads them, and scheduler/pool takes its purge
	// settings from its own Config (pool.WithPurge) instead.
	PurgePeriod time.Duration

	// UndeliverableHook is invoked for errors arriving after a
	// subscription has already terminated, or raised inside an
	// already-cancelled flow (§6, §7). It must never be nil;
	// WithUndeliverableHook ignores a nil hook.
	UndeliverableHook func(err error)

	// Metrics is the instrumentation provider operators record against
	// (ObserveOn queue depth, FlatMap active inner subscriptions). Defaults
	// to a no-op provider so instrumentation costs nothing unless a
	// caller opts in with WithMetricsProvider.
	Metrics metrics.Provider
}

func defaultGlobalOptions() *GlobalOptions {
	return &GlobalOptions{
		PurgeEnabled:      true,
		PurgePeriod:       2 * time.Second,
		UndeliverableHook: defaultUndeliverableHook,
		Metrics:           metrics.NewNoopProvider(),
	}
}

var globalOptions atomic.Pointer[GlobalOptions]

func init() {
	globalOptions.Store(defaultGlobalOptions())
}

// GlobalOption mutates a GlobalOptions snapshot. Use with Configure.
type GlobalOption func(*GlobalOptions)

// WithPurgePolicy sets PurgeEnabled/PurgePeriod together, since the
// period is only meaningful when purging is enabled.
func WithPurgePolicy(enabled bool, period time.Duration) GlobalOption {
	return func(o *GlobalOptions) {
		o.PurgeEnabled = enabled
		o.PurgePeriod = period
	}
}

// WithUndeliverableHook overrides the process-wide undeliverable-error
// hook. Passing nil is a no-op (the previous hook is kept) since the
// hook must never be nil.
func WithUndeliverableHook(hook func(err error)) GlobalOption {
	return func(o *GlobalOptions) {
		if hook != nil {
			o.UndeliverableHook = hook
		}
	}
}

// WithMetricsProvider installs the instrumentation provider operators
// record against. Passing nil is a no-op (the previous provider is
// kept).
func WithMetricsProvider(p metrics.Provider) GlobalOption {
	return func(o *GlobalOptions) {
		if p != nil {
			o.Metrics = p
		}
	}
}

// Configure replaces the process-wide options. Last writer wins
// (spec §9's documented serialization for the "plugins" slot): each
// call copies the current snapshot, applies opts to the copy, and
// stores it, so fields not touched by opts keep their previous values.
// Intended to run once at program startup; a test hook may call it
// again to install a deterministic hook for assertions.
func Configure(opts ...GlobalOption) {
	next := defaultGlobalOptions()
	cur := globalOptions.Load()
	*next = *cur
	for _, opt := range opts {
		if opt != nil {
			opt(next)
		}
	}
	globalOptions.Store(next)
}

// CurrentOptions returns the active GlobalOptions snapshot.
func CurrentOptions() GlobalOptions {
	return *globalOptions.Load()
}

var defaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

func defaultUndeliverableHook(err error) {
	evt := defaultLogger.Error()
	if se, ok := err.(*SubscriptionError); ok {
		evt = evt.Str("subscription_id", se.SubscriptionID()).Str("operator", se.Operator())
	}
	evt.Err(err).Msg("undeliverable error")
}

// reportUndeliverable routes err to the current undeliverable-error
// hook (§6, §7's "Propagation" rule: never silently swallowed).
func reportUndeliverable(err error) {
	if err == nil {
		return
	}
	CurrentOptions().UndeliverableHook(err)
}

// currentMetrics returns the active metrics provider.
func currentMetrics() metrics.Provider {
	return globalOptions.Load().Metrics
}
