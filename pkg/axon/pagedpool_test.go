package axon

import (
	"sync"
	"testing"
)

func TestPagedPool_AllocateFree(t *testing.T) {
	pool := NewPagedPool[string](4)

	index, gen, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if gen == 0 {
		t.Error("Allocate() should return a non-zero generation")
	}

	pool.Set(index, gen, "first")
	entity, ok := pool.GetEntry(index, gen)
	if !ok || entity != "first" {
		t.Errorf("GetEntry() = (%v, %v), want (\"first\", true)", entity, ok)
	}

	pool.Free(index, gen)
	if _, ok := pool.GetEntry(index, gen); ok {
		t.Error("GetEntry() should fail for a freed slot")
	}
}

func TestPagedPool_ExhaustsAtCapacity(t *testing.T) {
	pool := NewPagedPool[int](2)

	if _, _, err := pool.Allocate(); err != nil {
		t.Fatalf("Allocate() #1 error = %v", err)
	}
	if _, _, err := pool.Allocate(); err != nil {
		t.Fatalf("Allocate() #2 error = %v", err)
	}
	if _, _, err := pool.Allocate(); err != ErrDirectoryExhausted {
		t.Errorf("Allocate() past capacity error = %v, want ErrDirectoryExhausted", err)
	}
}

func TestPagedPool_GenerationBumpsOnReuse(t *testing.T) {
	pool := NewPagedPool[int](1)

	index1, gen1, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate() #1 error = %v", err)
	}
	pool.Free(index1, gen1)

	index2, gen2, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate() #2 error = %v", err)
	}
	if index1 != index2 {
		t.Fatalf("expected the freed slot to be reused, got index %d then %d", index1, index2)
	}
	if gen2 <= gen1 {
		t.Errorf("generation did not strictly increase on reuse: %d -> %d", gen1, gen2)
	}

	// The stale (index1, gen1) pair must never resolve again.
	if _, ok := pool.GetEntry(index1, gen1); ok {
		t.Error("a stale generation should never resolve after the slot was reused")
	}
}

func TestPagedPool_FreeWithStaleGenerationIsNoop(t *testing.T) {
	pool := NewPagedPool[int](1)

	index, gen1, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	pool.Free(index, gen1)

	index2, gen2, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate() #2 error = %v", err)
	}
	if index2 != index {
		t.Fatalf("expected slot reuse, got a different index %d", index2)
	}
	pool.Set(index2, gen2, 99)

	// Freeing the stale (index, gen1) pair must not touch the newer
	// occupant installed under gen2.
	pool.Free(index, gen1)

	entity, ok := pool.GetEntry(index2, gen2)
	if !ok || entity != 99 {
		t.Errorf("a stale Free corrupted the live occupant: GetEntry() = (%v, %v)", entity, ok)
	}
}

func TestPagedPool_PinPreventsAccountingUnderflow(t *testing.T) {
	pool := NewPagedPool[int](1)
	index, gen, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	pool.Set(index, gen, 7)

	entity, ok := pool.Pin(index, gen)
	if !ok || entity != 7 {
		t.Fatalf("Pin() = (%v, %v), want (7, true)", entity, ok)
	}
	pool.Unpin(index)

	defer func() {
		if recover() == nil {
			t.Error("Unpin() past the pin count should panic (invariant violation)")
		}
	}()
	pool.Unpin(index)
}

func TestPagedPool_PinFailsOnStaleGeneration(t *testing.T) {
	pool := NewPagedPool[int](1)
	index, gen, err := pool.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	pool.Free(index, gen)

	if _, ok := pool.Pin(index, gen); ok {
		t.Error("Pin() should fail once the slot's generation no longer matches")
	}
}

func TestPagedPool_GrowsAcrossPages(t *testing.T) {
	const n = pagedPoolPageSize*2 + 5
	pool := NewPagedPool[int](n)

	indices := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		index, gen, err := pool.Allocate()
		if err != nil {
			t.Fatalf("Allocate() #%d error = %v", i, err)
		}
		pool.Set(index, gen, i)
		indices = append(indices, index)
	}

	if got := pool.Count(); got != uint32(n) {
		t.Errorf("Count() = %d, want %d", got, n)
	}

	seen := map[uint32]bool{}
	for _, idx := range indices {
		if seen[idx] {
			t.Fatalf("index %d handed out twice", idx)
		}
		seen[idx] = true
	}
}

func TestPagedPool_ForEachOccupied(t *testing.T) {
	pool := NewPagedPool[string](8)

	type slot struct {
		index uint32
		gen   uint64
	}
	var slots []slot
	for i := 0; i < 3; i++ {
		index, gen, err := pool.Allocate()
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		pool.Set(index, gen, "x")
		slots = append(slots, slot{index, gen})
	}
	// Free the middle one so ForEachOccupied must skip it.
	mid := slots[1]
	pool.Free(mid.index, mid.gen)

	seen := map[uint32]bool{}
	pool.ForEachOccupied(func(index uint32, entity string) {
		seen[index] = true
	})

	if seen[mid.index] {
		t.Errorf("ForEachOccupied visited freed index %d", mid.index)
	}
	if !seen[slots[0].index] || !seen[slots[2].index] {
		t.Error("ForEachOccupied did not visit every occupied index")
	}
}

func TestPagedPool_ConcurrentAllocateFree(t *testing.T) {
	pool := NewPagedPool[int](64)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			index, gen, err := pool.Allocate()
			if err != nil {
				return
			}
			pool.Set(index, gen, 1)
			pool.GetEntry(index, gen)
			pool.Free(index, gen)
		}()
	}
	wg.Wait()
}
