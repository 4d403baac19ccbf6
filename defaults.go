package rx

// DefaultPrefetch is the default bounded-buffer capacity between an
// async operator and its producer (§6): ObserveOn's queue falls back
// to this when the caller passes a non-positive prefetch, and it is
// GroupBy's default WithGroupBuffer value.
const DefaultPrefetch = 128
