// Package arc implements the Adaptive Replacement Cache policy: two resident
// LRU lists (T1 recent, T2 frequent) and two ghost key-sets (B1, B2) that
// remember recent evictions without consuming a slot, driving an adaptive
// target size p for T1.
package arc

import (
	"container/list"

	"github.com/IvanBrykalov/blockcache/policy"
)

type arc[K comparable] struct {
	capacity int
	p        int // adaptive target size for T1, in [0, capacity]

	t1, t2     *list.List // resident LRU lists: Front() = MRU, Back() = LRU
	t1Idx      map[policy.SlotIndex]*list.Element
	t2Idx      map[policy.SlotIndex]*list.Element

	b1, b2 *list.List // ghost key lists, same MRU/LRU convention, Value is K
	b1Idx  map[K]*list.Element
	b2Idx  map[K]*list.Element
}

type factory[K comparable] struct{}

// New returns a Factory that constructs per-cache ARC instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New(capacity int) policy.Policy[K] {
	return &arc[K]{
		capacity: capacity,
		t1:       list.New(),
		t2:       list.New(),
		t1Idx:    make(map[policy.SlotIndex]*list.Element, capacity),
		t2Idx:    make(map[policy.SlotIndex]*list.Element, capacity),
		b1:       list.New(),
		b2:       list.New(),
		b1Idx:    make(map[K]*list.Element, capacity),
		b2Idx:    make(map[K]*list.Element, capacity),
	}
}

// OnAccess handles a hit in T1 or T2: both cases promote to MRU of T2 (a
// resident entry that gets accessed again is "frequent" from here on).
func (p *arc[K]) OnAccess(slot policy.SlotIndex) {
	if el, ok := p.t1Idx[slot]; ok {
		p.t1.Remove(el)
		delete(p.t1Idx, slot)
		p.t2Idx[slot] = p.t2.PushFront(slot)
		return
	}
	if el, ok := p.t2Idx[slot]; ok {
		p.t2.MoveToFront(el)
	}
}

// OnInsert admits a brand-new resident entry for key, applying the adaptive
// rule for the three possible miss cases: key was in B1 (grow p), key was
// in B2 (shrink p), or key was in neither (plain T1 insertion).
func (p *arc[K]) OnInsert(slot policy.SlotIndex, key K) {
	if el, ok := p.b1Idx[key]; ok {
		delta := max(1, p.b2.Len()/max(1, p.b1.Len()))
		p.p = min(p.p+delta, p.capacity)
		p.b1.Remove(el)
		delete(p.b1Idx, key)
		p.t2Idx[slot] = p.t2.PushFront(slot)
		return
	}
	if el, ok := p.b2Idx[key]; ok {
		delta := max(1, p.b1.Len()/max(1, p.b2.Len()))
		p.p = max(p.p-delta, 0)
		p.b2.Remove(el)
		delete(p.b2Idx, key)
		p.t2Idx[slot] = p.t2.PushFront(slot)
		return
	}
	p.t1Idx[slot] = p.t1.PushFront(slot)
}

// OnRemove unlinks a departing resident entry and records its key in the
// matching ghost list (B1 if it came from T1, B2 if from T2), trimming each
// ghost list back down to capacity entries.
func (p *arc[K]) OnRemove(slot policy.SlotIndex, key K) {
	if el, ok := p.t1Idx[slot]; ok {
		p.t1.Remove(el)
		delete(p.t1Idx, slot)
		p.pushGhost(p.b1, p.b1Idx, key)
		trimGhost(p.b1, p.b1Idx, p.capacity)
		return
	}
	if el, ok := p.t2Idx[slot]; ok {
		p.t2.Remove(el)
		delete(p.t2Idx, slot)
		p.pushGhost(p.b2, p.b2Idx, key)
		trimGhost(p.b2, p.b2Idx, p.capacity)
	}
}

func (p *arc[K]) pushGhost(l *list.List, idx map[K]*list.Element, key K) {
	if el, ok := idx[key]; ok {
		l.Remove(el)
	}
	idx[key] = l.PushFront(key)
}

func trimGhost[K comparable](l *list.List, idx map[K]*list.Element, cap int) {
	for l.Len() > cap {
		tail := l.Back()
		delete(idx, tail.Value.(K))
		l.Remove(tail)
	}
}

// SelectVictim chooses between T1 and T2: scan T1 when it is over its
// target p, scan T2 once T1 has shrunk to exactly p and T2 is non-empty,
// and fall back to T1 otherwise. Each list is scanned LRU→MRU.
func (p *arc[K]) SelectVictim(eligible policy.Eligible) (policy.SlotIndex, bool) {
	scanT1First := !(p.t1.Len() == p.p && p.t2.Len() > 0)
	if scanT1First {
		if slot, ok := scan(p.t1, eligible); ok {
			return slot, true
		}
		return scan(p.t2, eligible)
	}
	if slot, ok := scan(p.t2, eligible); ok {
		return slot, true
	}
	return scan(p.t1, eligible)
}

func scan(l *list.List, eligible policy.Eligible) (policy.SlotIndex, bool) {
	for el := l.Back(); el != nil; el = el.Prev() {
		slot := el.Value.(policy.SlotIndex)
		if eligible(slot) {
			return slot, true
		}
	}
	return policy.NoSlot, false
}

func (p *arc[K]) Name() string { return "ARC" }

func (p *arc[K]) DebugList() []policy.SlotIndex {
	out := make([]policy.SlotIndex, 0, p.t1.Len()+p.t2.Len())
	for el := p.t1.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(policy.SlotIndex))
	}
	for el := p.t2.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(policy.SlotIndex))
	}
	return out
}
