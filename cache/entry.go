package cache

import "github.com/IvanBrykalov/blockcache/policy"

// Entry is the per-slot bookkeeping record the coordinator keeps for every
// resident key. It intentionally carries nothing policy-specific: each
// eviction policy owns its own internal structures (lists, buckets, ghost
// sets) addressed by SlotIndex, so the layout here never changes with the
// active policy.
type Entry[K comparable, V any] struct {
	key   K
	value V

	valid    bool
	dirty    bool
	pinCount int32

	// slot is this entry's stable position in the slab. It never changes
	// across the entry's lifetime, even if the slab later grows.
	slot policy.SlotIndex
}

// eligible reports whether e may be evicted right now: resident, unpinned,
// and clean.
func (e *Entry[K, V]) eligible() bool {
	return e.valid && e.pinCount == 0 && !e.dirty
}

func (e *Entry[K, V]) reset(slot policy.SlotIndex, key K, value V) {
	e.key = key
	e.value = value
	e.valid = true
	e.dirty = false
	e.pinCount = 0
	e.slot = slot
}

func (e *Entry[K, V]) clear() {
	var zeroK K
	var zeroV V
	e.key = zeroK
	e.value = zeroV
	e.valid = false
	e.dirty = false
	e.pinCount = 0
}
