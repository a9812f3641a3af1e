package order

import "errors"

// Error taxonomy surfaced to the request layer. Raw storage-driver errors
// never cross this boundary: they are logged and wrapped as ErrStorage.
var (
	// ErrValidation marks missing or malformed required fields. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent order, product or store. Cross-tenant
	// access reads the same way so existence is not leaked.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a unit-of-work failure after rollback.
	ErrStorage = errors.New("storage failure")
	// ErrExternal marks a third-party platform timeout or error response.
	ErrExternal = errors.New("external platform error")
)
