// Package fifo implements a First-In-First-Out eviction policy: admission
// order is the only thing that matters, access never changes position.
package fifo

import (
	"container/list"

	"github.com/IvanBrykalov/blockcache/policy"
)

type fifo[K comparable] struct {
	l   *list.List
	idx map[policy.SlotIndex]*list.Element
}

type factory[K comparable] struct{}

// New returns a Factory that constructs per-cache FIFO instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New(capacity int) policy.Policy[K] {
	return &fifo[K]{
		l:   list.New(),
		idx: make(map[policy.SlotIndex]*list.Element, capacity),
	}
}

// OnAccess is a no-op: FIFO ordering is admission order only.
func (p *fifo[K]) OnAccess(policy.SlotIndex) {}

// OnInsert appends the new entry at the tail (newest).
func (p *fifo[K]) OnInsert(slot policy.SlotIndex, _ K) {
	p.idx[slot] = p.l.PushBack(slot)
}

func (p *fifo[K]) OnRemove(slot policy.SlotIndex, _ K) {
	if el, ok := p.idx[slot]; ok {
		p.l.Remove(el)
		delete(p.idx, slot)
	}
}

// SelectVictim walks from the head (oldest) toward the tail, returning the
// first eligible slot.
func (p *fifo[K]) SelectVictim(eligible policy.Eligible) (policy.SlotIndex, bool) {
	for el := p.l.Front(); el != nil; el = el.Next() {
		slot := el.Value.(policy.SlotIndex)
		if eligible(slot) {
			return slot, true
		}
	}
	return policy.NoSlot, false
}

func (p *fifo[K]) Name() string { return "FIFO" }

func (p *fifo[K]) DebugList() []policy.SlotIndex {
	out := make([]policy.SlotIndex, 0, p.l.Len())
	for el := p.l.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(policy.SlotIndex))
	}
	return out
}
