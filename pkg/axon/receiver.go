package axon

import "sync"

// ReceiverHandlerFunc is a typed callback registered on a Receiver,
// invoked synchronously by deliver, on the sending goroutine (spec.md
// §4.13).
type ReceiverHandlerFunc func(from Address, msg interface{})

// Receiver is the synchronous, non-actor message sink of C13 (spec.md
// §4.13): a handle an external (non-scheduled) goroutine can hand out as
// a send target, then block in Wait until enough messages have arrived.
// Delivery to a Receiver bypasses the work queues and worker pool
// entirely — there is no mailbox, no dispatcher pipeline, and no
// handler-table validation/tombstone machinery. Grounded on Theron's
// Source/Receiver.cpp: Push runs every registered handler inline, under
// the receiver's own lock, before bumping the received count and pulsing
// waiters; Wait never dequeues anything, it only waits for that count to
// advance (spec.md §4.13 "push(envelope) fires any registered handler...
// wait(n=1) blocks until the counter has advanced by n since the
// previous wait").
type Receiver struct {
	mu      sync.Mutex
	cond    *sync.Cond
	address Address
	scheme  IdentityScheme

	receivedCount uint64
	waitedCount   uint64

	handlersMu sync.Mutex
	handlers   map[TypeID][]ReceiverHandlerFunc
}

// newReceiver constructs a receiver bound to addr, called only by
// Framework.CreateReceiver.
func newReceiver(addr Address, scheme IdentityScheme) *Receiver {
	r := &Receiver{
		address:  addr,
		scheme:   scheme,
		handlers: make(map[TypeID][]ReceiverHandlerFunc),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Address returns the address this receiver was registered under.
func (r *Receiver) Address() Address {
	return r.address
}

// RegisterReceiverHandler registers fn to run against every future
// message of type T delivered to r. Unlike an actor's handler table,
// there is no deferred scratch-list merge: registration normally happens
// once, before the receiver's address is ever handed out, so there is no
// in-progress iteration for a late registration to race.
func RegisterReceiverHandler[T any](r *Receiver, fn func(from Address, msg T)) {
	typeID, ok := typeIDForT[T](r.scheme)
	invariant(ok, "register-receiver-handler-unregistered-type", "message type must be registered with RegisterMessageType before RegisterReceiverHandler under the explicit identity scheme")
	r.handlersMu.Lock()
	r.handlers[typeID] = append(r.handlers[typeID], func(from Address, msg interface{}) {
		fn(from, msg.(T))
	})
	r.handlersMu.Unlock()
}

// deliver runs every handler registered for env's type synchronously, on
// the caller's own goroutine, then advances the received counter and
// wakes any goroutine parked in Wait (spec.md §4.13 "push(envelope) fires
// any registered handler, increments a received counter, and signals a
// condition"). Called by Framework.send for a receiver-domain destination
// address; never touches a WorkQueue. The caller retains ownership of env
// and is responsible for freeing it once deliver returns.
func (r *Receiver) deliver(env *Envelope) {
	from, msg := env.From(), env.Value()

	r.handlersMu.Lock()
	fns := r.handlers[env.TypeID()]
	r.handlersMu.Unlock()
	for _, fn := range fns {
		fn(from, msg)
	}

	r.mu.Lock()
	r.receivedCount++
	r.mu.Unlock()
	r.cond.Broadcast()
}

// Wait blocks the calling goroutine until at least n further messages
// have been delivered since the previous call to Wait returned (spec.md
// §4.13 "wait(n=1) blocks until the counter has advanced by n since the
// previous wait"). It never dequeues or returns a message itself — any
// per-message payload access happens inside a handler registered via
// RegisterReceiverHandler, which already ran by the time the relevant
// delivery's count became visible here.
func (r *Receiver) Wait(n ...uint64) {
	need := uint64(1)
	if len(n) > 0 {
		need = n[0]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	target := r.waitedCount + need
	for r.receivedCount < target {
		r.cond.Wait()
	}
	r.waitedCount = target
}

// ReceivedCount reports the total number of messages delivered to r since
// construction, regardless of how many times Wait has returned.
func (r *Receiver) ReceivedCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.receivedCount
}
