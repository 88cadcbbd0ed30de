package axon

import "sync"

// Tuning knobs for the message cache (spec.md §9: "These constants are
// tuning knobs, not contracts"). Mirrors Theron's MessageCache::MAX_POOLS
// = 32 (original_source/Include/Theron/Detail/MessageCache/
// MessageCache.h), one pool per word-sized size class.
const (
	messageCacheClasses  = 32
	messageCacheWordSize = 8
	messageCacheMaxBytes = messageCacheClasses * messageCacheWordSize
)

// MessageCache is the per-worker-thread free-list pool of spec.md §4
// (C2): "a per-thread pool of fixed-size blocks that dominates the
// per-message allocation path". Each workerContext owns exactly one,
// used only by that worker (spec.md §5); the Framework holds one more,
// shared by every caller outside a worker goroutine.
//
// Theron buckets raw memory blocks by byte size and hands back aligned
// pointers into them (Detail/MessageCache/MessageCache.h). This runtime
// recycles whole *Envelope values instead of raw bytes — Go message
// payloads are typed values boxed in an interface, not byte blobs, so
// pooling the envelope struct that carries the box is the direct
// equivalent and avoids unsafe reinterpretation of arbitrary user types.
// Larger declared sizes bypass the cache and go straight to the
// Allocator, exactly as Theron's MapBlockSizeToPool does for sizes
// beyond MAX_POOLS.
type MessageCache struct {
	allocator Allocator
	classes   [messageCacheClasses]sync.Pool
}

// NewMessageCache creates a cache backed by allocator, used only for the
// bypass path (sizes that don't fit any size class) and for reporting
// allocation exhaustion faithfully; an empty size-class pool hands out a
// fresh Go-allocated Envelope instead.
func NewMessageCache(allocator Allocator) *MessageCache {
	notNil(allocator, "allocator")
	c := &MessageCache{allocator: allocator}
	for i := range c.classes {
		c.classes[i].New = func() interface{} { return &Envelope{} }
	}
	return c
}

// classFor maps a declared block size to a size-class index, or false if
// the size is too large to cache (spec.md §4.7 "Larger messages bypass
// the cache and go direct to the allocator").
func classFor(size int) (int, bool) {
	if size <= 0 || size > messageCacheMaxBytes {
		return 0, false
	}
	return (size - 1) / messageCacheWordSize, true
}

// Allocate returns a reset Envelope sized to hold size bytes of payload
// bookkeeping (the message type's size from messageFootprint, as
// Framework.send passes it), honoring alignment via the underlying Allocator boundary on
// the bypass path. Returns (nil, ErrAllocationExhausted) only when the
// bypass path's Allocator reports failure — pooled classes never fail,
// since a fresh Envelope is a plain Go allocation that the runtime
// cannot observe failing (the GC aborts the process first).
func (c *MessageCache) Allocate(size, alignment int) (*Envelope, error) {
	if class, ok := classFor(size); ok {
		env := c.classes[class].Get().(*Envelope)
		env.blockSize = size
		return env, nil
	}

	// Bypass: exercise the Allocator boundary directly so a caller-
	// supplied allocator's exhaustion is honored for oversized messages.
	if block := c.allocator.AllocateAligned(size, alignment); block == nil {
		return nil, ErrAllocationExhausted
	}
	return &Envelope{blockSize: size}, nil
}

// Free returns env to its size-class pool, or releases its bypass-path
// allocation back to the Allocator.
func (c *MessageCache) Free(env *Envelope) {
	notNil(env, "envelope")
	size := env.blockSize
	env.reset()

	if class, ok := classFor(size); ok {
		c.classes[class].Put(env)
		return
	}
	// Bypass-allocated envelopes hold no block reference of their own
	// (the payload box is a Go value, not the raw Allocator block); the
	// Allocator's FreeSized is invoked with a nil block purely so a
	// custom allocator's accounting (e.g. a byte-budget arena) still
	// sees the matching free for every oversized allocate.
	c.allocator.FreeSized(nil, size)
}
