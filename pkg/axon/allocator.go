package axon

import "unsafe"

// Allocator is the pluggable boundary of spec.md §6: every heap
// acquisition the runtime makes for message storage funnels through it.
// The specification treats the concrete default allocator as an external
// collaborator (§1 Non-goals); only this interface, and a minimal
// Go-idiomatic default satisfying it, belong to the core.
//
// Implementations must never panic on failure: Allocate/AllocateAligned
// return nil to signal exhaustion, which callers turn into
// ErrAllocationExhausted (spec.md §7, error kind 1).
type Allocator interface {
	// Allocate returns a block of at least size bytes, or nil on failure.
	// size is guaranteed >= 4.
	Allocate(size int) []byte

	// AllocateAligned returns a block of at least size bytes whose first
	// byte sits at an address that is a multiple of alignment (a power
	// of two), or nil on failure.
	AllocateAligned(size, alignment int) []byte

	// Free releases a block returned by Allocate/AllocateAligned.
	Free(block []byte)

	// FreeSized releases a block of a known size. Allocators that track
	// size classes internally can use this to avoid a lookup.
	FreeSized(block []byte, size int)
}

// goHeapAllocator is the default Allocator: it hands out ordinary Go
// slices and leans entirely on the garbage collector for reclamation.
// This is a deliberately minimal stand-in for the "default heap
// allocator" spec.md §1 places out of scope — the boundary (interface)
// is the contract; this implementation exists only so the library is
// usable without a caller having to supply one.
type goHeapAllocator struct{}

// NewGoHeapAllocator returns the default Allocator implementation.
func NewGoHeapAllocator() Allocator {
	return goHeapAllocator{}
}

func (goHeapAllocator) Allocate(size int) []byte {
	if size <= 0 {
		return nil
	}
	return make([]byte, size)
}

func (goHeapAllocator) AllocateAligned(size, alignment int) []byte {
	if size <= 0 || alignment <= 0 || alignment&(alignment-1) != 0 {
		return nil
	}
	if alignment <= 1 {
		return make([]byte, size)
	}

	buf := make([]byte, size+alignment)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	offset := int((uintptr(alignment) - addr%uintptr(alignment)) % uintptr(alignment))
	return buf[offset : offset+size : offset+size]
}

func (goHeapAllocator) Free([]byte) {
	// The Go garbage collector reclaims the backing array once the last
	// reference drops; a custom allocator (e.g. an arena) would do real
	// work here.
}

func (goHeapAllocator) FreeSized(block []byte, _ int) {
	goHeapAllocator{}.Free(block)
}
