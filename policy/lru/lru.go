// Package lru implements the classic move-to-front Least-Recently-Used
// eviction policy.
package lru

import (
	"container/list"

	"github.com/IvanBrykalov/blockcache/policy"
)

// lru keeps a single container/list ordered MRU (front) to LRU (back),
// addressed by policy.SlotIndex. It owns this list independently of the
// cache's slab, per the package doc of policy.
type lru[K comparable] struct {
	l   *list.List
	idx map[policy.SlotIndex]*list.Element
}

type factory[K comparable] struct{}

// New returns a Factory that constructs per-cache LRU instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New(capacity int) policy.Policy[K] {
	return &lru[K]{
		l:   list.New(),
		idx: make(map[policy.SlotIndex]*list.Element, capacity),
	}
}

// OnAccess promotes slot to MRU (front of the list).
func (p *lru[K]) OnAccess(slot policy.SlotIndex) {
	if el, ok := p.idx[slot]; ok {
		p.l.MoveToFront(el)
	}
}

// OnInsert places the new entry at MRU.
func (p *lru[K]) OnInsert(slot policy.SlotIndex, _ K) {
	p.idx[slot] = p.l.PushFront(slot)
}

// OnRemove unlinks slot from the list.
func (p *lru[K]) OnRemove(slot policy.SlotIndex, _ K) {
	if el, ok := p.idx[slot]; ok {
		p.l.Remove(el)
		delete(p.idx, slot)
	}
}

// SelectVictim walks from the LRU end (back) toward MRU, returning the first
// eligible slot found. Ineligible entries (pinned or dirty) are skipped in
// place; no bookkeeping is mutated during the scan.
func (p *lru[K]) SelectVictim(eligible policy.Eligible) (policy.SlotIndex, bool) {
	for el := p.l.Back(); el != nil; el = el.Prev() {
		slot := el.Value.(policy.SlotIndex)
		if eligible(slot) {
			return slot, true
		}
	}
	return policy.NoSlot, false
}

func (p *lru[K]) Name() string { return "LRU" }

func (p *lru[K]) DebugList() []policy.SlotIndex {
	out := make([]policy.SlotIndex, 0, p.l.Len())
	for el := p.l.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(policy.SlotIndex))
	}
	return out
}
