package axon

// Scheduler implements C10 (spec.md §4.10): one shared work queue plus
// one local work queue per worker, with a pluggable blocking or
// non-blocking wait strategy for a worker that finds both queues empty.
//
// A mailbox transitioning from empty to non-empty is always scheduled
// onto the shared queue (the sender is rarely a worker goroutine, so
// there is no "local" queue to prefer). A worker that just finished
// handling one envelope from a mailbox that still has more work
// re-schedules that mailbox onto its own local queue instead — the
// affinity optimization Theron's blocking and non-blocking scheduler
// variants both apply (original_source/Include/Theron/Detail/Scheduler/
// BlockingScheduler.h, NonBlockingScheduler.h): a busy actor tends to keep
// being serviced by the same worker, which keeps its MessageCache and
// handler table warm for that goroutine.
type Scheduler struct {
	blocking bool
	shared   *WorkQueue
	counters *Counters
}

// newScheduler creates a scheduler over shared, selecting the blocking
// or non-blocking wait strategy per blocking (spec.md §6 "scheduler
// mode").
func newScheduler(shared *WorkQueue, counters *Counters, blocking bool) *Scheduler {
	return &Scheduler{blocking: blocking, shared: shared, counters: counters}
}

// ScheduleExternal pushes mb onto the shared queue. Framework.send calls
// it for every mailbox transition from empty to non-empty, whether the
// sender is an outside goroutine or a handler running on a worker
// (spec.md §4.9's "enqueue iff transitioning from empty").
// Every such push is a potential wake-up of a worker blocked in the
// blocking scheduler variant, so it counts as a "pulse" (spec.md §6:
// "threads-pulsed: messages that caused a sleeping worker to be
// woken") whether or not a worker actually was asleep to receive it —
// "threads-woken" (incremented in workerLoop) is the actual count.
func (s *Scheduler) ScheduleExternal(mb *Mailbox) {
	s.shared.Push(mb)
	s.counters.IncSharedPushes()
	s.counters.IncThreadsPulsed()
}

// workerLoop is the body run by each worker goroutine (spec.md §4.11):
// prefer the worker's own local queue, then the shared queue, applying
// local.backoff (non-blocking mode) or a blocking wait on the shared
// queue once both are empty. Returns once stop is closed (checked before
// every dispatch cycle) or, in blocking mode, once the shared queue is
// closed and empty; mailboxes still queued are left for
// Framework.Shutdown to drain.
func (s *Scheduler) workerLoop(w *workerContext, process func(mb *Mailbox) bool) {
	backoff := newYieldBackoff(w.yieldPolicy)

	handle := func(mb *Mailbox) {
		if process(mb) {
			w.local.Push(mb)
			s.counters.IncLocalPushes()
		}
	}

	for {
		select {
		case <-w.stop:
			// No new dispatch cycle starts once shutdown has been
			// requested (spec.md §4.12 "shutdown: stops workers"); any
			// currently-running handler has already returned by the
			// time this check is reached, since a worker only ever
			// reaches the top of this loop between dispatch cycles.
			// Whatever is left in local/shared queues or mailbox
			// backlogs is drained to the fallback handler by
			// Framework.Shutdown, not here.
			return
		default:
		}

		if mb := w.local.Pop(); mb != nil {
			backoff.Reset()
			handle(mb)
			continue
		}

		if s.blocking {
			mb := s.shared.PopWait()
			if mb == nil {
				// Queue closed and drained: shutdown (spec.md §4.12).
				return
			}
			s.counters.IncThreadsWoken()
			handle(mb)
			continue
		}

		if mb := s.shared.Pop(); mb != nil {
			backoff.Reset()
			handle(mb)
			continue
		}

		select {
		case <-w.stop:
			if s.shared.Len() == 0 && w.local.Len() == 0 {
				return
			}
		default:
		}

		s.counters.IncYieldEvents()
		backoff.Wait()
	}
}
