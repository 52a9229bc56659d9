package store

import "errors"

// ErrStoreUnavailable wraps any transport or auth failure talking to the
// document store. A scan cannot make progress past it, so callers abort the
// whole run instead of counting it as a per-record issue.
var ErrStoreUnavailable = errors.New("document store unavailable")

// ErrAmbiguousMatch means more than one user shares an email the reconciler
// was about to trust. Guessing between them would make the fix
// non-deterministic, so the record is reported instead.
var ErrAmbiguousMatch = errors.New("multiple users match this email")
