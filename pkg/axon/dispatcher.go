package axon

// Dispatcher implements C9 (spec.md §4.9): the fixed pipeline a worker
// runs once per popped mailbox. Exactly one Dispatcher exists per
// Framework and is shared, read-only after construction, across every
// worker goroutine.
//
// Pipeline (spec.md §4.9): pin the owning actor -> peek the head
// envelope -> validate the handler table -> match and invoke -> free the
// envelope -> pop -> unpin. Process then reports whether the mailbox
// still has work, and the calling worker re-enqueues it if so.
// Theron's equivalent (original_source/Include/Theron/Detail/Core/
// ActorProcessor.h) additionally locks/unlocks the mailbox around each
// step; here that locking lives inside Mailbox's own methods, so the
// pipeline below only sequences calls into Mailbox, not raw locks.
type Dispatcher struct {
	actors    *Directory[*Actor]
	counters  *Counters
	framework *Framework
	fallback  func(to Address, env *Envelope)
}

// newDispatcher wires a Dispatcher to its collaborators. fallback is
// called for any envelope that matched no handler, including one
// belonging to an already-deregistered actor; to is the mailbox's owning
// address, passed through so the fallback path can log which actor a
// diversion concerned (spec.md §4.9/§4.12).
func newDispatcher(actors *Directory[*Actor], counters *Counters, framework *Framework, fallback func(to Address, env *Envelope)) *Dispatcher {
	return &Dispatcher{
		actors:    actors,
		counters:  counters,
		framework: framework,
		fallback:  fallback,
	}
}

// Process runs one dispatch cycle for mb: at most one envelope is
// handled per call, matching spec.md §4.9's "a worker handles one
// message per mailbox pop, then re-evaluates the queue" so no single
// actor can starve the rest of a worker's local queue. cache is the
// calling worker's own MessageCache (spec.md §5 "Message cache:
// per-worker, never shared") — envelopes processed here are freed back
// to it, and any message the matched handler sends is allocated from it
// too, via the ActorContext passed to the handler. Process reports
// whether mb still holds further work, so the caller (the worker loop,
// which alone knows which local queue to prefer) can re-enqueue it.
func (d *Dispatcher) Process(mb *Mailbox, cache *MessageCache) (stillHasWork bool) {
	actor, ok := d.actors.Pin(mb.Owner())
	if !ok {
		// The actor was deregistered while messages were still queued
		// for it. Nothing will ever dispatch them through a handler
		// table that no longer exists, so they are drained straight to
		// the framework's fallback handler (spec.md §4.12 "Deregister").
		d.drainToFallback(mb, cache)
		return false
	}

	func() {
		defer func() {
			d.actors.Unpin(mb.Owner())
			if r := recover(); r != nil {
				// Resources above are already released; propagate the
				// panic unchanged so a handler bug or invariant
				// violation still surfaces as a crash, not a silently
				// dropped message.
				panic(r)
			}
		}()

		env := mb.Front()
		if env == nil {
			return
		}

		actor.handlers.Validate()
		ctx := &ActorContext{actor: actor, framework: d.framework, cache: cache}
		if !actor.handlers.MatchAndInvoke(ctx, env) {
			d.fallback(mb.Owner(), env)
		}
		d.counters.IncMessagesProcessed()

		cache.Free(env)
		stillHasWork = mb.Pop()
	}()

	return stillHasWork
}

// drainToFallback empties mb directly, used when the owning actor no
// longer exists. It does not touch the handler table (there is none to
// validate) and never re-enqueues mb, since an actorless mailbox has no
// worker that will ever pin it again.
func (d *Dispatcher) drainToFallback(mb *Mailbox, cache *MessageCache) {
	for {
		env := mb.Front()
		if env == nil {
			return
		}
		d.fallback(mb.Owner(), env)
		d.counters.IncMessagesProcessed()
		cache.Free(env)
		if !mb.Pop() {
			return
		}
	}
}
