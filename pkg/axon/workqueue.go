package axon

import "sync"

// WorkQueue is an intrusive FIFO queue of Mailboxes awaiting dispatch,
// implementing the shared and per-worker local queues of C10 (spec.md
// §4.10). Linking through Mailbox.next avoids a second allocation per
// scheduling event, mirroring Theron's IntrusiveQueue<Mailbox>
// (original_source/Include/Theron/Detail/Containers/IntrusiveQueue.h) used
// for exactly this purpose.
//
// A WorkQueue is safe for concurrent Push/Pop from multiple goroutines.
// Closed queues still drain any mailboxes pushed before Close but refuse
// new work and wake every blocked waiter, used during Framework shutdown
// (spec.md §4.12).
type WorkQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	head   *Mailbox
	tail   *Mailbox
	count  int
	closed bool
}

// NewWorkQueue returns an empty work queue.
func NewWorkQueue() *WorkQueue {
	q := &WorkQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends mb to the tail and wakes one blocked waiter, if any. A
// mailbox must never be linked into two work queues at once (spec.md
// §4.10 "a scheduled mailbox belongs to exactly one queue").
func (q *WorkQueue) Push(mb *Mailbox) {
	notNil(mb, "mailbox")
	q.mu.Lock()
	invariant(mb.next == nil, "workqueue-double-link", "mailbox already linked into a work queue")
	if q.closed {
		q.mu.Unlock()
		return
	}
	if q.tail == nil {
		q.head = mb
	} else {
		q.tail.next = mb
	}
	q.tail = mb
	q.count++
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop removes and returns the head mailbox, or nil if the queue is
// currently empty. Used by the non-blocking scheduler variant, which
// prefers spinning/yielding over sleeping (spec.md §4.10).
func (q *WorkQueue) Pop() *Mailbox {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// PopWait removes and returns the head mailbox, blocking on a condition
// variable until one is available or the queue is closed (spec.md §4.10,
// the blocking scheduler variant). Returns nil only once the queue is
// closed and drained.
func (q *WorkQueue) PopWait() *Mailbox {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == nil && !q.closed {
		q.cond.Wait()
	}
	return q.popLocked()
}

// popLocked must be called with q.mu held.
func (q *WorkQueue) popLocked() *Mailbox {
	mb := q.head
	if mb == nil {
		return nil
	}
	q.head = mb.next
	if q.head == nil {
		q.tail = nil
	}
	mb.next = nil
	q.count--
	return mb
}

// Len reports the number of mailboxes currently queued.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Close marks the queue closed and wakes every waiter blocked in
// PopWait, so worker threads parked there can notice shutdown (spec.md
// §4.12). Mailboxes already queued remain poppable until drained.
func (q *WorkQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
