package axon

import "fmt"

// Domain distinguishes the two kinds of entity an Address can name
// (spec.md §3): an Actor or a Receiver. Each has its own directory
// (§4.5), so an Actor and a Receiver may validly occupy the same index
// in their respective directories without colliding.
type Domain uint8

const (
	// DomainNone marks the null address (generation 0, never resolves).
	DomainNone Domain = iota
	DomainActor
	DomainReceiver
)

func (d Domain) String() string {
	switch d {
	case DomainActor:
		return "actor"
	case DomainReceiver:
		return "receiver"
	default:
		return "none"
	}
}

// Address is the 64-bit composite identifier of spec.md §3:
// (domain, index, generation). It is a plain value type — comparable,
// copyable, and safe to hold onto indefinitely. A stale Address (one
// whose generation no longer matches the slot's current occupant) simply
// fails to resolve; it never aliases a different, later entity.
//
// The zero value is the null address: Domain == DomainNone, Generation
// == 0, and it never resolves in any directory.
type Address struct {
	Domain     Domain
	Index      uint32
	Generation uint64
}

// NullAddress is the address that never resolves to a live entity.
var NullAddress = Address{}

// IsNull reports whether a is the null address.
func (a Address) IsNull() bool {
	return a.Domain == DomainNone && a.Generation == 0
}

func (a Address) String() string {
	if a.IsNull() {
		return "axon://null"
	}
	return fmt.Sprintf("axon://%s/%d#%d", a.Domain, a.Index, a.Generation)
}
