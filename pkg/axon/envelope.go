package axon

import (
	"reflect"
	"sync"
)

// IdentityScheme selects how message type identity is established
// (spec.md §4.7). A single Framework must use exactly one scheme for its
// whole lifetime; under IdentityExplicit, sending a value of a type never
// registered fails fast with ErrUnregisteredMessage before it is queued.
type IdentityScheme uint8

const (
	// IdentityImplicit derives type identity from Go's own run-time type
	// information (reflect.Type), the analogue of Theron's built-in RTTI
	// path. This is the default: no registration call is required.
	IdentityImplicit IdentityScheme = iota

	// IdentityExplicit requires every message type used with a Framework
	// to be registered by name first, via RegisterMessageType. This is
	// the analogue of Theron's THERON_REGISTER_MESSAGE macro
	// (original_source/Include/Theron/Register.h), needed on platforms
	// (or, here, build configurations) where implicit type info is
	// unavailable or undesired.
	IdentityExplicit
)

// TypeID is the stable, per-value-type identity stamped on every
// envelope (spec.md §4.7, C7). Two TypeIDs compare equal with == iff
// they name the same registered/derived type.
type TypeID struct {
	scheme IdentityScheme
	rt     reflect.Type
	name   string
}

func (t TypeID) String() string {
	if t.scheme == IdentityExplicit {
		return t.name
	}
	if t.rt == nil {
		return "<untyped>"
	}
	return t.rt.String()
}

// messageRegistry backs IdentityExplicit: a process-wide table of
// registered type -> name, analogous to Theron's StringPool
// (original_source/Include/Theron/Detail/Strings/StringPool.h), which
// interns message type names so identity comparison is pointer-cheap.
// Go string comparison is already a length check plus a fast memcmp, so
// this registry only needs to guarantee "registered or not" and doesn't
// need to replicate Theron's pointer-interning trick.
var messageRegistry sync.Map // reflect.Type -> string

// RegisterMessageType registers name as the explicit identity of T.
// Call once, typically from an init func, before constructing any
// Framework with IdentityExplicit configured. Registering the same type
// twice with different names is an invariant violation.
func RegisterMessageType[T any](name string) {
	invariant(name != "", "register-message-type", "message type name must not be empty")
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil {
		rt = reflect.TypeOf(&zero).Elem()
	}
	if existing, loaded := messageRegistry.LoadOrStore(rt, name); loaded {
		invariant(existing == name, "register-message-type-conflict", "type %s already registered as %q, cannot re-register as %q", rt, existing, name)
	}
}

// typeIDFor computes the TypeID of v under the given scheme. ok is false
// under IdentityExplicit when v's type was never registered.
func typeIDFor(scheme IdentityScheme, v interface{}) (TypeID, bool) {
	rt := reflect.TypeOf(v)
	switch scheme {
	case IdentityExplicit:
		name, ok := messageRegistry.Load(rt)
		if !ok {
			return TypeID{}, false
		}
		return TypeID{scheme: IdentityExplicit, rt: rt, name: name.(string)}, true
	default:
		return TypeID{scheme: IdentityImplicit, rt: rt}, true
	}
}

// typeIDForT computes the TypeID that T would carry under scheme,
// without requiring a value in hand. Used by RegisterHandler, which
// registers by type parameter rather than by example value.
func typeIDForT[T any](scheme IdentityScheme) (TypeID, bool) {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil {
		rt = reflect.TypeOf(&zero).Elem()
	}
	if scheme == IdentityExplicit {
		name, ok := messageRegistry.Load(rt)
		if !ok {
			return TypeID{}, false
		}
		return TypeID{scheme: IdentityExplicit, rt: rt, name: name.(string)}, true
	}
	return TypeID{scheme: IdentityImplicit, rt: rt}, true
}

// messageFootprint estimates the (size, alignment) of a Go value for
// the purposes of the Allocator/MessageCache boundary (spec.md §6). The
// payload itself is never reinterpreted as raw bytes — it stays a typed
// Go value boxed in the envelope's interface{} field — but the
// declared type's natural size and alignment are what the cache uses to
// pick a size class and what a bypass allocation asks the Allocator to
// honor, mirroring Theron's sizeof(MessageType) at the call site of its
// THERON_REGISTER_MESSAGE-driven allocation path.
func messageFootprint(v interface{}) (size int, alignment int) {
	if v == nil {
		return 0, 1
	}
	rt := reflect.TypeOf(v)
	return int(rt.Size()), rt.Align()
}

// Envelope is the internal carrier of one in-flight message (spec.md
// §3/§4.7, C7). It is exclusively owned by the mailbox it is queued in,
// then by the dispatcher while handlers run (spec.md §3 "Ownership
// summary"). Envelopes are recycled through a MessageCache rather than
// freed and reallocated on every send.
type Envelope struct {
	typeID    TypeID
	from      Address
	value     interface{}
	blockSize int
}

// TypeID returns the envelope's message type identity.
func (e *Envelope) TypeID() TypeID { return e.typeID }

// From returns the sender's address (NullAddress if sent from outside
// any actor/receiver context).
func (e *Envelope) From() Address { return e.from }

// Value returns the boxed user message value.
func (e *Envelope) Value() interface{} { return e.value }

// reset clears an envelope for return to a MessageCache bucket, dropping
// its reference to the payload so the cache doesn't keep it alive.
func (e *Envelope) reset() {
	e.typeID = TypeID{}
	e.from = NullAddress
	e.value = nil
	e.blockSize = 0
}
