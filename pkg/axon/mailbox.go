package axon

import "sync"

// Mailbox is the per-actor FIFO queue of pending envelopes, implementing
// C6 (spec.md §4.6). Exactly one Mailbox exists per Actor, created when
// the actor is registered and freed when it is deregistered.
//
// "Enqueued" tracks whether the mailbox is currently linked into a work
// queue: a mailbox is enqueued if and only if it holds at least one
// message and is not already being dispatched by some worker (spec.md
// §4.6 invariant, P2). Push only schedules the mailbox when it
// transitions from empty to non-empty and no worker currently holds it;
// Pop (called by the dispatcher between handling one message and
// looking for the next) reports whether it still holds work, so the
// caller re-enqueues it under the same rule.
type Mailbox struct {
	mu          sync.Mutex
	queue       []*Envelope
	dispatching bool
	owner       Address

	// next links this mailbox into an intrusive work-queue list (see
	// workqueue.go) without a second allocation, mirroring Theron's
	// Mailbox deriving from IntrusiveQueue<Mailbox>::Node
	// (original_source/Include/Theron/Detail/Mailboxes/Mailbox.h).
	next *Mailbox
}

// NewMailbox returns an empty, non-dispatching mailbox owned by the
// actor at owner.
func NewMailbox(owner Address) *Mailbox {
	return &Mailbox{owner: owner}
}

// Owner returns the address of the actor this mailbox belongs to.
func (m *Mailbox) Owner() Address {
	return m.owner
}

// Push appends env to the tail of the queue. It reports whether the
// mailbox was empty and idle beforehand — the signal the caller (the
// Framework's Send path) uses to decide whether this mailbox must now be
// scheduled onto a work queue (spec.md §4.6 "Push" / §4.9 step "enqueue
// iff transitioning from empty").
func (m *Mailbox) Push(env *Envelope) (shouldSchedule bool) {
	notNil(env, "envelope")
	m.mu.Lock()
	wasEmpty := len(m.queue) == 0
	m.queue = append(m.queue, env)
	shouldSchedule = wasEmpty && !m.dispatching
	if shouldSchedule {
		m.dispatching = true
	}
	m.mu.Unlock()
	return shouldSchedule
}

// Front returns the envelope at the head of the queue without removing
// it, or nil if the queue is empty. The dispatcher resolves and validates
// against this envelope before committing to handling it (spec.md §4.9
// steps 2-3).
func (m *Mailbox) Front() *Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil
	}
	return m.queue[0]
}

// Pop removes the head envelope (which must be the one most recently
// returned by Front) and reports whether the mailbox still has work and
// must therefore be re-enqueued by the caller (spec.md §4.9 step
// "pop, and if non-empty re-enqueue").
func (m *Mailbox) Pop() (stillHasWork bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invariant(len(m.queue) > 0, "pop-empty-mailbox", "Pop called on an empty mailbox")
	m.queue[0] = nil
	m.queue = m.queue[1:]
	stillHasWork = len(m.queue) > 0
	if !stillHasWork {
		m.dispatching = false
	}
	return stillHasWork
}

// Len reports the number of envelopes currently queued (used by the
// mailbox-queue-max observability counter, spec.md §4.6).
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
