package axon

// Directory maps Addresses of one Domain to live entities, backed by a
// PagedPool (spec.md §4.5, C5). There are exactly two directories per
// Framework: one for actors, one for receivers (§3).
type Directory[T any] struct {
	domain Domain
	pool   *PagedPool[T]
}

// NewDirectory creates a directory for the given domain with capacity
// slots (spec.md §6 "max-actors"/"max-receivers").
func NewDirectory[T any](domain Domain, capacity uint32) *Directory[T] {
	invariant(domain != DomainNone, "directory-domain", "directory domain must not be DomainNone")
	return &Directory[T]{domain: domain, pool: NewPagedPool[T](capacity)}
}

// Register allocates a slot and returns its Address, before the caller
// has necessarily constructed the entity (spec.md "Design Notes": the
// framework allocates the slot first, then constructs the entity with
// the address passed explicitly, never via a shared scratch variable).
func (d *Directory[T]) Register() (Address, error) {
	index, gen, err := d.pool.Allocate()
	if err != nil {
		return NullAddress, err
	}
	return Address{Domain: d.domain, Index: index, Generation: gen}, nil
}

// Install stores the constructed entity into the slot named by addr.
// Must be called exactly once, right after Register, with the same
// Address it returned.
func (d *Directory[T]) Install(addr Address, entity T) {
	invariant(addr.Domain == d.domain, "directory-domain-mismatch", "address domain %s does not match directory domain %s", addr.Domain, d.domain)
	d.pool.Set(addr.Index, addr.Generation, entity)
}

// Deregister frees the slot named by addr, preventing any further
// resolution of addr (or of stale copies of it) to an entity. It does
// not wait for in-flight pins to drain; freeing a pinned slot is an
// invariant violation by design (the caller must unpin first or the
// dispatcher must finish before the framework deregisters it).
func (d *Directory[T]) Deregister(addr Address) {
	if addr.Domain != d.domain {
		return
	}
	d.pool.Free(addr.Index, addr.Generation)
}

// GetEntry resolves addr to its live entity. Returns false if the
// address never existed, was deregistered, or belongs to a slot now
// occupied by a newer generation (spec.md §4.4 GetEntry contract).
func (d *Directory[T]) GetEntry(addr Address) (T, bool) {
	var zero T
	if addr.Domain != d.domain {
		return zero, false
	}
	return d.pool.GetEntry(addr.Index, addr.Generation)
}

// Pin resolves and pins addr in one step, keyed by generation so a
// concurrent deregister-then-reallocate can never hand back the wrong
// entity (spec.md §4.5).
func (d *Directory[T]) Pin(addr Address) (T, bool) {
	var zero T
	if addr.Domain != d.domain {
		return zero, false
	}
	return d.pool.Pin(addr.Index, addr.Generation)
}

// Unpin releases a pin taken by Pin.
func (d *Directory[T]) Unpin(addr Address) {
	if addr.Domain != d.domain {
		return
	}
	d.pool.Unpin(addr.Index)
}

// Count returns the number of entities currently registered.
func (d *Directory[T]) Count() uint32 {
	return d.pool.Count()
}

// ForEach calls fn once for every currently registered entity, with its
// full Address.
func (d *Directory[T]) ForEach(fn func(addr Address, entity T)) {
	d.pool.ForEachOccupied(func(index uint32, entity T) {
		slot := d.pool.slotAtLocked(index)
		slot.mu.Lock()
		gen := slot.generation
		slot.mu.Unlock()
		fn(Address{Domain: d.domain, Index: index, Generation: gen}, entity)
	})
}
