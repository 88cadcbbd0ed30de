package axon

import "sync"

// pagedPoolPageSize mirrors Theron's ENTRIES_PER_PAGE template parameter:
// slots are carved out in fixed-size pages so the pool can grow without
// ever relocating an already-handed-out slot (spec.md §4.4: "slot
// addresses are therefore stable for the lifetime of the process").
const pagedPoolPageSize = 256

// pooledSlot is one directory slot (spec.md §3 "Directory slot"):
// {entity-pointer | null, current-generation, pin-count, slot-lock}.
//
// Theron threads a singly-linked free list directly through unused slot
// memory (Detail/PagedPool/FreeList.h) to avoid a second allocation; Go
// slots are already live Go values with no raw-memory reuse to exploit,
// so the free list here is a plain slice of free indices instead. Same
// contract, idiomatic substitution.
type pooledSlot[T any] struct {
	mu         sync.Mutex
	entity     T
	occupied   bool
	generation uint64
	pinCount   int32
}

// PagedPool is a growable array of fixed-size pages of slots, each with
// its own generation counter, implementing spec.md §4.4 (C4). Allocate
// and Free are serialized by a single pool-wide lock (the infrequent
// path); GetEntry and Pin/Unpin take the pool lock only briefly to find
// the slot, then the per-slot lock, so a long dispatch can hold a slot
// pinned without blocking unrelated allocations.
type PagedPool[T any] struct {
	mu       sync.Mutex
	pages    [][]*pooledSlot[T]
	free     []uint32
	capacity uint32
	len      uint32
}

// NewPagedPool creates a pool that will never hand out more than
// capacity live slots at once (spec.md §6 "max-actors"/"max-receivers").
func NewPagedPool[T any](capacity uint32) *PagedPool[T] {
	invariant(capacity > 0, "paged-pool-capacity", "capacity must be positive, got %d", capacity)
	return &PagedPool[T]{capacity: capacity}
}

// Allocate reserves a free slot, bumps its generation, and returns
// (index, generation). Fails with ErrDirectoryExhausted once capacity is
// reached with no free slot available (spec.md §4.4).
func (p *PagedPool[T]) Allocate() (uint32, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var index uint32
	if n := len(p.free); n > 0 {
		index = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		if p.len >= p.capacity {
			return 0, 0, ErrDirectoryExhausted
		}
		index = p.len
		p.len++
		p.growTo(index)
	}

	slot := p.slotAt(index)
	slot.mu.Lock()
	invariant(!slot.occupied, "paged-pool-double-allocate", "index %d already occupied", index)
	slot.occupied = true
	slot.generation++
	gen := slot.generation
	slot.mu.Unlock()

	return index, gen, nil
}

// Free releases the slot at (index, generation) back to the pool. A
// generation that no longer matches the slot's current occupant is a
// stale address — this is a silent no-op rather than an invariant
// violation, since a double-deregister race against an already-freed
// and reallocated slot must never free the wrong, newer occupant
// (spec.md §4.5 generation safety). It is an invariant violation to
// free a slot that is currently pinned (spec.md §4.4: "Free(index)
// fails with InvariantError if the slot is pinned").
func (p *PagedPool[T]) Free(index uint32, generation uint64) {
	slot := p.slotAtLocked(index)
	if slot == nil {
		return
	}

	slot.mu.Lock()
	if !slot.occupied || slot.generation != generation {
		slot.mu.Unlock()
		return
	}
	invariant(slot.pinCount == 0, "free-while-pinned", "slot %d freed with pin count %d", index, slot.pinCount)
	var zero T
	slot.occupied = false
	slot.entity = zero
	slot.mu.Unlock()

	p.mu.Lock()
	p.free = append(p.free, index)
	p.mu.Unlock()
}

// Set installs entity as the occupant of an already-allocated slot. The
// caller must have just allocated (index, generation) together.
func (p *PagedPool[T]) Set(index uint32, generation uint64, entity T) {
	slot := p.slotAtLocked(index)
	notNil(slot, "slot")
	slot.mu.Lock()
	invariant(slot.generation == generation, "set-generation-mismatch", "slot %d has generation %d, expected %d", index, slot.generation, generation)
	slot.entity = entity
	slot.mu.Unlock()
}

// GetEntry returns the entity at (index, generation) only if the slot's
// current generation still matches — the sole mechanism (spec.md §4.5)
// preventing a stale address from reaching a newly installed occupant.
func (p *PagedPool[T]) GetEntry(index uint32, generation uint64) (T, bool) {
	var zero T
	slot := p.slotAtLocked(index)
	if slot == nil {
		return zero, false
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if !slot.occupied || slot.generation != generation {
		return zero, false
	}
	return slot.entity, true
}

// Pin prevents the slot's destruction across a longer critical region
// (spec.md §4.5) — the gap between "mailbox accepted my message" and
// "a worker actually starts dispatching it". Returns the entity and true
// on success; false if the generation no longer matches.
func (p *PagedPool[T]) Pin(index uint32, generation uint64) (T, bool) {
	var zero T
	slot := p.slotAtLocked(index)
	if slot == nil {
		return zero, false
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if !slot.occupied || slot.generation != generation {
		return zero, false
	}
	slot.pinCount++
	return slot.entity, true
}

// Unpin releases a pin taken by Pin. It is an invariant violation to
// unpin more times than pinned.
func (p *PagedPool[T]) Unpin(index uint32) {
	slot := p.slotAtLocked(index)
	notNil(slot, "slot")
	slot.mu.Lock()
	invariant(slot.pinCount > 0, "unpin-without-pin", "slot %d unpinned with pin count %d", index, slot.pinCount)
	slot.pinCount--
	slot.mu.Unlock()
}

// ForEachOccupied calls fn once for every currently occupied slot, in
// index order. fn must not call back into Allocate/Free on the same
// pool; it may safely call GetEntry/Pin/Unpin.
func (p *PagedPool[T]) ForEachOccupied(fn func(index uint32, entity T)) {
	p.mu.Lock()
	pages := p.pages
	p.mu.Unlock()

	for pageIndex, page := range pages {
		for offset, slot := range page {
			if slot == nil {
				continue
			}
			slot.mu.Lock()
			occupied := slot.occupied
			entity := slot.entity
			slot.mu.Unlock()
			if occupied {
				fn(uint32(pageIndex)*pagedPoolPageSize+uint32(offset), entity)
			}
		}
	}
}

// Count returns the number of slots currently allocated.
func (p *PagedPool[T]) Count() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.len - uint32(len(p.free))
}

// growTo ensures page storage exists for index. Must be called with p.mu held.
func (p *PagedPool[T]) growTo(index uint32) {
	pageIndex := index / pagedPoolPageSize
	for uint32(len(p.pages)) <= pageIndex {
		p.pages = append(p.pages, make([]*pooledSlot[T], pagedPoolPageSize))
	}
	offset := index % pagedPoolPageSize
	if p.pages[pageIndex][offset] == nil {
		p.pages[pageIndex][offset] = &pooledSlot[T]{}
	}
}

// slotAtLocked fetches the slot for index, taking the pool lock only to
// read the (stable, append-only) page table. Returns nil if index was
// never allocated — pages are only ever grown, never shrunk, so this is
// safe to call concurrently with Allocate.
func (p *PagedPool[T]) slotAtLocked(index uint32) *pooledSlot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slotAt(index)
}

// slotAt must be called with p.mu held (or during single-threaded setup).
func (p *PagedPool[T]) slotAt(index uint32) *pooledSlot[T] {
	pageIndex := index / pagedPoolPageSize
	if pageIndex >= uint32(len(p.pages)) {
		return nil
	}
	return p.pages[pageIndex][index%pagedPoolPageSize]
}
