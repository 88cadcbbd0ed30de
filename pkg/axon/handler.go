package axon

import "sync"

// HandlerFunc is a type-specific callback registered on an Actor or
// Receiver (spec.md §3 "Handler", GLOSSARY). It receives the context of
// the actor currently dispatching and the envelope matched against it.
type HandlerFunc func(ctx *ActorContext, env *Envelope)

// handlerNode is one entry of the intrusive singly-linked handler list
// (spec.md §3 "Handler": "{type-id, next, tombstone-flag, invoke}").
type handlerNode struct {
	typeID TypeID
	fn     HandlerFunc
	tomb   bool
	next   *handlerNode
}

// HandlerTable implements C8: the ordered list of typed handlers plus
// default handler owned by one Actor, with deferred registration so a
// handler can safely mutate the list — including removing itself —
// while it is executing (spec.md §4.8, P5).
//
// Registration/deregistration may be called either before the actor's
// first dispatch (from the construct callback passed to
// Framework.CreateActor, on the creating goroutine) or from
// within a currently-executing handler (on the dispatching worker).
// Because a mailbox is dispatched by at most one worker at a time (P2),
// these two call sites are never concurrent with each other or with
// Validate/MatchAndInvoke; the mutex here is defense-in-depth, not load-
// bearing for correctness.
type HandlerTable struct {
	mu             sync.Mutex
	head           *handlerNode
	scratch        []*handlerNode
	defaultHandler HandlerFunc
}

// NewHandlerTable returns an empty handler table.
func NewHandlerTable() *HandlerTable {
	return &HandlerTable{}
}

// Register adds fn as a handler for typeID. The addition is not visible
// to Match until the next Validate call for this actor (spec.md §4.8
// step 1).
func (t *HandlerTable) Register(typeID TypeID, fn HandlerFunc) {
	notNil(fn, "handler func")
	t.mu.Lock()
	t.scratch = append(t.scratch, &handlerNode{typeID: typeID, fn: fn})
	t.mu.Unlock()
}

// Deregister marks every handler registered for typeID (live or still
// scratch-pending) as tombstoned. Every MatchAndInvoke pass that starts
// after this call skips tombstoned handlers; a pass already in progress
// (for example one whose handler deregisters itself) still runs every
// handler it matched when it started. The nodes themselves are only
// unlinked and freed at the next Validate, so an in-progress pass never
// observes a freed node.
func (t *HandlerTable) Deregister(typeID TypeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for n := t.head; n != nil; n = n.next {
		if n.typeID == typeID {
			n.tomb = true
		}
	}
	for _, n := range t.scratch {
		if n.typeID == typeID {
			n.tomb = true
		}
	}
}

// SetDefault installs the actor's default handler, invoked when no
// registered handler matches an envelope's type (spec.md §4.8 step 3).
func (t *HandlerTable) SetDefault(fn HandlerFunc) {
	t.mu.Lock()
	t.defaultHandler = fn
	t.mu.Unlock()
}

// Validate splices pending scratch registrations into the live list and
// drops tombstoned nodes, freeing their storage (spec.md §4.8 step 1).
// Called once per dispatch, immediately before MatchAndInvoke, by
// Dispatcher.Process.
func (t *HandlerTable) Validate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.scratch) > 0 {
		for i := 1; i < len(t.scratch); i++ {
			t.scratch[i-1].next = t.scratch[i]
		}
		if t.head == nil {
			t.head = t.scratch[0]
		} else {
			tail := t.head
			for tail.next != nil {
				tail = tail.next
			}
			tail.next = t.scratch[0]
		}
		t.scratch = t.scratch[:0]
	}

	var prev *handlerNode
	for cur := t.head; cur != nil; {
		next := cur.next
		if cur.tomb {
			if prev == nil {
				t.head = next
			} else {
				prev.next = next
			}
		} else {
			prev = cur
		}
		cur = next
	}
}

// MatchAndInvoke scans handlers in registration order and invokes every
// one whose type-id equals env's (spec.md §4.8 step 2; multiple handlers
// may match). If none match, the default handler runs instead. Returns
// true if the envelope was handled by some handler (registered or
// default), false if it fell through entirely (the dispatcher routes
// that case to the framework's fallback handler).
func (t *HandlerTable) MatchAndInvoke(ctx *ActorContext, env *Envelope) bool {
	// The matching set is fixed before any handler runs, so a tombstone
	// set by a handler during this pass only takes effect from the next one.
	var matches []*handlerNode
	t.mu.Lock()
	for n := t.head; n != nil; n = n.next {
		if !n.tomb && n.typeID == env.typeID {
			matches = append(matches, n)
		}
	}
	t.mu.Unlock()
	for _, n := range matches {
		n.fn(ctx, env)
	}
	if len(matches) > 0 {
		return true
	}

	t.mu.Lock()
	def := t.defaultHandler
	t.mu.Unlock()
	if def != nil {
		def(ctx, env)
		return true
	}
	return false
}
