package fragment

import "errors"

// ErrStoreUnavailable means the underlying KV store failed to complete an
// operation. Callers may retry.
var ErrStoreUnavailable = errors.New("fragment: store unavailable")

// ErrStoreInconsistent means a reference resolved to an absent fragment, or
// a fragment failed decode validation. It indicates store corruption or a
// bug and is fatal for the operation that hit it.
var ErrStoreInconsistent = errors.New("fragment: store inconsistent")

// ErrInvalidKey means a key could not be compared against existing keys.
var ErrInvalidKey = errors.New("fragment: invalid key")

// ErrInvariantViolation means a structural check on a loaded fragment
// failed (entry count out of bounds, mis-ordered children, and so on).
var ErrInvariantViolation = errors.New("fragment: invariant violation")
