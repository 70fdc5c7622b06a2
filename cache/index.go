package cache

import "github.com/IvanBrykalov/blockcache/policy"

// primaryIndex maps a cache key to its slab slot. It contains exactly the
// keys of the currently valid entries, with O(1) expected lookup/insert/
// delete via a plain Go map.
type primaryIndex[K comparable] struct {
	m map[K]policy.SlotIndex
}

func newPrimaryIndex[K comparable](capacity int) *primaryIndex[K] {
	return &primaryIndex[K]{m: make(map[K]policy.SlotIndex, capacity)}
}

func (idx *primaryIndex[K]) lookup(key K) (policy.SlotIndex, bool) {
	slot, ok := idx.m[key]
	return slot, ok
}

func (idx *primaryIndex[K]) set(key K, slot policy.SlotIndex) {
	idx.m[key] = slot
}

func (idx *primaryIndex[K]) delete(key K) {
	delete(idx.m, key)
}

func (idx *primaryIndex[K]) len() int {
	return len(idx.m)
}

func (idx *primaryIndex[K]) reset() {
	idx.m = make(map[K]policy.SlotIndex, len(idx.m))
}
