package rx

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Namespace prefixes every sentinel error this package defines, so a
// caller matching on string content across libraries can tell them
// apart.
const Namespace = "rx"

// Sentinel errors for the taxonomy in spec §7.
var (
	// ErrNullSignal is raised when an operator's transform would emit
	// a null-equivalent value where onNext requires a real one.
	ErrNullSignal = errors.New(Namespace + ": null signal")

	// ErrProtocolViolation covers a second onSubscribe, an onNext
	// after terminal, or any other grammar violation of §3.1.
	ErrProtocolViolation = errors.New(Namespace + ": protocol violation")

	// ErrQueueOverflow is raised by a fixed-capacity buffered path
	// that rejects an offer (§7, "rare with the chained SPSC layout").
	ErrQueueOverflow = errors.New(Namespace + ": queue overflow")

	// ErrTimeout is raised by the timeout operator when no item
	// arrives before the deadline and no fallback was supplied.
	ErrTimeout = errors.New(Namespace + ": timeout")

	// ErrGroupAlreadySubscribed is raised on a second subscription to
	// the same live group (§4.7).
	ErrGroupAlreadySubscribed = errors.New(Namespace + ": group already has a subscriber")
)

// SubscriptionError tags an error with the identity of the
// subscription and operator that raised it (§2.G1), for the
// undeliverable-error hook to log as structured fields. It mirrors the
// teacher package's TaskMetaError/taskTaggedError shape, generalized
// from "task id/index" to "subscription id/operator".
type SubscriptionError struct {
	err              error
	subscriptionID   string
	operator         string
}

func newSubscriptionError(err error, subscriptionID, operator string) error {
	if err == nil {
		return nil
	}
	return &SubscriptionError{err: err, subscriptionID: subscriptionID, operator: operator}
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("%s[%s]: %v", e.operator, e.subscriptionID, e.err)
}

func (e *SubscriptionError) Unwrap() error { return e.err }

// SubscriptionID returns the id this error was tagged with, if any.
func (e *SubscriptionError) SubscriptionID() string { return e.subscriptionID }

// Operator returns the operator name this error was tagged with.
func (e *SubscriptionError) Operator() string { return e.operator }

// newCompositeError aggregates multiple terminal errors from a delay-error
// mode (§4.6, §4.8 error accumulation). It is built with errorc.Join
// rather than errors.Join so its Error() string carries the richer,
// multi-line rendering errorc provides; errors.Is/As still unwraps each
// constituent via errorc's own Unwrap support.
func newCompositeError(errs []error) error {
	filtered := errs[:0]
	for _, e := range errs {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return errorc.Join(filtered...)
}
