package cache

import "github.com/IvanBrykalov/blockcache/policy"

// slab is a fixed-layout array of Entry records plus a stack of currently
// free slot indices. It only ever grows (Resize growing the cache
// reallocates it); shrinking the logical capacity never shrinks the
// physical array — see the coordinator's capacity field for why that's safe.
type slab[K comparable, V any] struct {
	entries []Entry[K, V]
	free    []policy.SlotIndex // stack; next free slot is free[len(free)-1]
}

// newSlab allocates physicalCap entry records, all invalid, and seeds the
// free stack in reverse order so slot 0 is the first one drawn.
func newSlab[K comparable, V any](physicalCap int) *slab[K, V] {
	s := &slab[K, V]{
		entries: make([]Entry[K, V], physicalCap),
		free:    make([]policy.SlotIndex, physicalCap),
	}
	for i := 0; i < physicalCap; i++ {
		s.free[i] = policy.SlotIndex(physicalCap - 1 - i)
	}
	return s
}

// alloc draws the next free slot. Returns (NoSlot, false) if none remain.
func (s *slab[K, V]) alloc() (policy.SlotIndex, bool) {
	n := len(s.free)
	if n == 0 {
		return policy.NoSlot, false
	}
	slot := s.free[n-1]
	s.free = s.free[:n-1]
	return slot, true
}

// release returns slot to the free stack. The caller must have already
// cleared the entry at slot.
func (s *slab[K, V]) release(slot policy.SlotIndex) {
	s.free = append(s.free, slot)
}

// at returns a pointer to the entry at slot. The pointer must not be
// retained past the current locked operation: growing the slab reallocates
// the backing array.
func (s *slab[K, V]) at(slot policy.SlotIndex) *Entry[K, V] {
	return &s.entries[slot]
}

// physicalCapacity returns the number of slots currently allocated,
// regardless of the coordinator's logical capacity.
func (s *slab[K, V]) physicalCapacity() int {
	return len(s.entries)
}

// grow extends the slab to newPhysicalCap slots, appending the new slot
// indices to the free stack. It is a no-op if the slab is already at least
// that large.
func (s *slab[K, V]) grow(newPhysicalCap int) {
	old := len(s.entries)
	if newPhysicalCap <= old {
		return
	}
	s.entries = append(s.entries, make([]Entry[K, V], newPhysicalCap-old)...)
	for i := newPhysicalCap - 1; i >= old; i-- {
		s.free = append(s.free, policy.SlotIndex(i))
	}
}
