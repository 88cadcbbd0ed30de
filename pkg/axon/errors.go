package axon

import "errors"

// Sentinel errors for recoverable, user-facing failures (spec.md §7).
// These are returned, never panicked: callers decide how to react.
var (
	// ErrAllocationExhausted is returned when the allocator boundary
	// returns nil for a requested block.
	ErrAllocationExhausted = errors.New("axon: allocation exhausted")

	// ErrDirectoryExhausted is returned when a directory's index pool
	// has no free slots left at its configured capacity.
	ErrDirectoryExhausted = errors.New("axon: directory exhausted")

	// ErrUnregisteredMessage is returned by Send when explicit message
	// registration is enabled and the value's type was never registered.
	ErrUnregisteredMessage = errors.New("axon: unregistered message type")

	// ErrNoRecipient is returned when an address does not resolve to a
	// live entity (wrong generation, deregistered, or never existed).
	ErrNoRecipient = errors.New("axon: no recipient")

	// ErrShutdownInProgress is returned by Send once Framework.Shutdown
	// has been called.
	ErrShutdownInProgress = errors.New("axon: shutdown in progress")
)

// InvariantError reports an internal invariant violation (spec.md §7,
// error kind 6). Internal violations are raised through invariant, which
// panics with it; the type exists so the panic value carries structure
// instead of a bare string. Config.Validate also returns one to report a
// malformed configuration.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	if e.Detail == "" {
		return "axon: invariant violated: " + e.Invariant
	}
	return "axon: invariant violated: " + e.Invariant + ": " + e.Detail
}
