package axon

import "testing"

func TestMailbox_PushReportsEmptyToNonEmptyTransition(t *testing.T) {
	owner := Address{Domain: DomainActor, Index: 1, Generation: 1}
	mb := NewMailbox(owner)

	if mb.Owner() != owner {
		t.Errorf("Owner() = %v, want %v", mb.Owner(), owner)
	}

	env1 := &Envelope{value: "first"}
	if !mb.Push(env1) {
		t.Error("Push() into an empty, idle mailbox should report shouldSchedule=true")
	}

	env2 := &Envelope{value: "second"}
	if mb.Push(env2) {
		t.Error("Push() into an already-scheduled mailbox should report shouldSchedule=false")
	}
}

func TestMailbox_FrontAndPopFIFO(t *testing.T) {
	mb := NewMailbox(Address{Domain: DomainActor, Index: 1, Generation: 1})

	env1 := &Envelope{value: "one"}
	env2 := &Envelope{value: "two"}
	mb.Push(env1)
	mb.Push(env2)

	if got := mb.Front(); got != env1 {
		t.Errorf("Front() = %v, want the first pushed envelope", got)
	}
	if stillHasWork := mb.Pop(); !stillHasWork {
		t.Error("Pop() should report stillHasWork=true with one envelope remaining")
	}

	if got := mb.Front(); got != env2 {
		t.Errorf("Front() after Pop() = %v, want the second pushed envelope", got)
	}
	if stillHasWork := mb.Pop(); stillHasWork {
		t.Error("Pop() should report stillHasWork=false once drained")
	}
}

func TestMailbox_FrontOnEmptyReturnsNil(t *testing.T) {
	mb := NewMailbox(Address{})
	if got := mb.Front(); got != nil {
		t.Errorf("Front() on an empty mailbox = %v, want nil", got)
	}
}

func TestMailbox_PopOnEmptyPanics(t *testing.T) {
	mb := NewMailbox(Address{})
	defer func() {
		if recover() == nil {
			t.Error("Pop() on an empty mailbox should panic (invariant violation)")
		}
	}()
	mb.Pop()
}

func TestMailbox_PushAfterDrainReschedules(t *testing.T) {
	mb := NewMailbox(Address{})
	mb.Push(&Envelope{value: "one"})
	mb.Pop() // drains back to empty, dispatching resets to false

	if !mb.Push(&Envelope{value: "two"}) {
		t.Error("Push() into a drained, idle mailbox should report shouldSchedule=true again")
	}
}

func TestMailbox_Len(t *testing.T) {
	mb := NewMailbox(Address{})
	if mb.Len() != 0 {
		t.Errorf("Len() = %d, want 0", mb.Len())
	}
	mb.Push(&Envelope{})
	mb.Push(&Envelope{})
	if mb.Len() != 2 {
		t.Errorf("Len() = %d, want 2", mb.Len())
	}
}
