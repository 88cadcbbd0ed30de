package axon

import (
	"testing"
	"time"
)

func TestScheduler_ScheduleExternalPushesToShared(t *testing.T) {
	shared := NewWorkQueue()
	counters := NewCounters(nil)
	s := newScheduler(shared, counters, true)

	mb := NewMailbox(Address{Index: 1})
	s.ScheduleExternal(mb)

	if shared.Len() != 1 {
		t.Errorf("shared queue length = %d, want 1", shared.Len())
	}
	if got := counters.Snapshot().SharedPushes; got != 1 {
		t.Errorf("SharedPushes = %d, want 1", got)
	}
	if got := counters.Snapshot().ThreadsPulsed; got != 1 {
		t.Errorf("ThreadsPulsed = %d, want 1", got)
	}
}

func TestScheduler_WorkerLoopPrefersLocalQueue(t *testing.T) {
	shared := NewWorkQueue()
	counters := NewCounters(nil)
	s := newScheduler(shared, counters, false)

	localMB := NewMailbox(Address{Index: 1})
	sharedMB := NewMailbox(Address{Index: 2})
	w := &workerContext{local: NewWorkQueue(), yieldPolicy: YieldPolite, stop: make(chan struct{})}
	w.local.Push(localMB)
	shared.Push(sharedMB)

	var order []*Mailbox
	process := func(mb *Mailbox) bool {
		order = append(order, mb)
		if len(order) == 2 {
			close(w.stop)
		}
		return false
	}

	done := make(chan struct{})
	go func() {
		s.workerLoop(w, process)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workerLoop never returned after stop was closed")
	}

	if len(order) != 2 || order[0] != localMB || order[1] != sharedMB {
		t.Errorf("dispatch order = %v, want [local, shared]", order)
	}
}

func TestScheduler_WorkerLoopBlockingWakesOnPush(t *testing.T) {
	shared := NewWorkQueue()
	counters := NewCounters(nil)
	s := newScheduler(shared, counters, true)

	w := &workerContext{local: NewWorkQueue(), yieldPolicy: YieldPolite, stop: make(chan struct{})}
	processed := make(chan *Mailbox, 1)
	process := func(mb *Mailbox) bool {
		processed <- mb
		close(w.stop)
		return false
	}

	go s.workerLoop(w, process)

	mb := NewMailbox(Address{Index: 1})
	time.Sleep(10 * time.Millisecond) // let the worker park in PopWait
	shared.Push(mb)

	select {
	case got := <-processed:
		if got != mb {
			t.Errorf("processed mailbox = %v, want %v", got, mb)
		}
	case <-time.After(time.Second):
		t.Fatal("blocking worker never woke up after a shared-queue push")
	}

	if got := counters.Snapshot().ThreadsWoken; got != 1 {
		t.Errorf("ThreadsWoken = %d, want 1", got)
	}
}

func TestScheduler_WorkerLoopStopsPromptlyBetweenDispatchCycles(t *testing.T) {
	// Regression test for the shutdown-hang bug: a worker whose local
	// queue keeps being refilled must still notice w.stop at the top of
	// the next iteration instead of spinning forever.
	shared := NewWorkQueue()
	counters := NewCounters(nil)
	s := newScheduler(shared, counters, false)

	w := &workerContext{local: NewWorkQueue(), yieldPolicy: YieldPolite, stop: make(chan struct{})}
	mb := NewMailbox(Address{Index: 1})
	w.local.Push(mb)

	var iterations int
	process := func(mb *Mailbox) bool {
		iterations++
		if iterations == 3 {
			close(w.stop)
		}
		return true // keeps re-scheduling itself onto the local queue
	}

	done := make(chan struct{})
	go func() {
		s.workerLoop(w, process)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workerLoop did not return after stop was closed, even though new work kept arriving on the local queue")
	}
}
