// Package lfu implements a Least-Frequently-Used eviction policy with O(1)
// access-count bucketing: every distinct access count gets its own
// FIFO-ordered bucket, and a running minCount tracks the cheapest
// populated bucket so SelectVictim starts its scan there.
package lfu

import (
	"container/list"

	"github.com/IvanBrykalov/blockcache/policy"
)

type lfu[K comparable] struct {
	// buckets[count] holds slots with that exact access count, oldest
	// (within the count) at the front: new entries at a count join the
	// tail of that bucket, so ties break FIFO.
	buckets map[uint64]*list.List
	// elem locates a slot's element within its current bucket for O(1)
	// removal/relinking.
	elem map[policy.SlotIndex]*list.Element
	// count is the access count currently associated with each slot, used
	// to find which bucket to remove a slot from.
	count map[policy.SlotIndex]uint64

	minCount uint64
}

type factory[K comparable] struct{}

// New returns a Factory that constructs per-cache LFU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New(capacity int) policy.Policy[K] {
	return &lfu[K]{
		buckets: make(map[uint64]*list.List),
		elem:    make(map[policy.SlotIndex]*list.Element, capacity),
		count:   make(map[policy.SlotIndex]uint64, capacity),
	}
}

func (p *lfu[K]) bucket(c uint64) *list.List {
	b, ok := p.buckets[c]
	if !ok {
		b = list.New()
		p.buckets[c] = b
	}
	return b
}

// unlink removes slot from its current bucket, reclaiming an empty bucket
// and advancing minCount past it when that bucket was the cheapest.
func (p *lfu[K]) unlink(slot policy.SlotIndex) uint64 {
	c := p.count[slot]
	b := p.buckets[c]
	b.Remove(p.elem[slot])
	delete(p.elem, slot)
	if b.Len() == 0 {
		delete(p.buckets, c)
		if p.minCount == c {
			p.minCount++
		}
	}
	return c
}

// OnAccess bumps the slot's access count by one and relinks it to the tail
// of the new bucket.
func (p *lfu[K]) OnAccess(slot policy.SlotIndex) {
	old := p.unlink(slot)
	next := old + 1
	p.count[slot] = next
	p.elem[slot] = p.bucket(next).PushBack(slot)
}

// OnInsert admits the slot into the count-1 bucket.
func (p *lfu[K]) OnInsert(slot policy.SlotIndex, _ K) {
	p.count[slot] = 1
	p.elem[slot] = p.bucket(1).PushBack(slot)
	p.minCount = 1
}

func (p *lfu[K]) OnRemove(slot policy.SlotIndex, _ K) {
	p.unlink(slot)
	delete(p.count, slot)
}

// SelectVictim walks the minCount bucket from its head, then each higher
// count in turn up to the largest populated one, returning the first
// eligible entry. Because ineligible entries are not relinked, a cache
// pinned end-to-end degrades to a scan of every resident entry.
func (p *lfu[K]) SelectVictim(eligible policy.Eligible) (policy.SlotIndex, bool) {
	if len(p.buckets) == 0 {
		return policy.NoSlot, false
	}
	if p.buckets[p.minCount] == nil {
		// unlink advances minCount by one only, so after OnRemove empties
		// the cheapest bucket it can name a count no bucket holds.
		p.minCount = p.minBucket()
	}
	maxB := p.maxBucket()
	for b := p.minCount; b <= maxB; b++ {
		bucket, ok := p.buckets[b]
		if !ok {
			continue
		}
		for el := bucket.Front(); el != nil; el = el.Next() {
			slot := el.Value.(policy.SlotIndex)
			if eligible(slot) {
				return slot, true
			}
		}
	}
	return policy.NoSlot, false
}

func (p *lfu[K]) maxBucket() uint64 {
	var max uint64
	for c := range p.buckets {
		if c > max {
			max = c
		}
	}
	return max
}

func (p *lfu[K]) minBucket() uint64 {
	min := ^uint64(0)
	for c := range p.buckets {
		if c < min {
			min = c
		}
	}
	return min
}

func (p *lfu[K]) Name() string { return "LFU" }

func (p *lfu[K]) DebugList() []policy.SlotIndex {
	out := make([]policy.SlotIndex, 0, len(p.elem))
	for c := p.minCount; c <= p.maxBucket(); c++ {
		b, ok := p.buckets[c]
		if !ok {
			continue
		}
		for el := b.Front(); el != nil; el = el.Next() {
			out = append(out, el.Value.(policy.SlotIndex))
		}
	}
	return out
}
