// Package clock implements the CLOCK (second-chance) eviction policy: a
// circular scan with a per-entry reference bit, approximating LRU at O(1)
// amortized cost per access.
package clock

import "github.com/IvanBrykalov/blockcache/policy"

type node struct {
	next, prev policy.SlotIndex
	ref        bool
}

type clock[K comparable] struct {
	nodes map[policy.SlotIndex]*node
	hand  policy.SlotIndex // next candidate the scan will consider
}

type factory[K comparable] struct{}

// New returns a Factory that constructs per-cache CLOCK instances.
func New[K comparable]() policy.Factory[K] { return factory[K]{} }

func (factory[K]) New(capacity int) policy.Policy[K] {
	return &clock[K]{
		nodes: make(map[policy.SlotIndex]*node, capacity),
		hand:  policy.NoSlot,
	}
}

// OnAccess sets the reference bit, giving the entry a second chance.
func (p *clock[K]) OnAccess(slot policy.SlotIndex) {
	if n, ok := p.nodes[slot]; ok {
		n.ref = true
	}
}

// OnInsert splices the new entry into the circle immediately before the
// hand. Fresh entries start unreferenced: an entry earns its second chance
// only once it is actually accessed, otherwise a burst of one-off inserts
// would all survive the first sweep for free.
func (p *clock[K]) OnInsert(slot policy.SlotIndex, _ K) {
	n := &node{ref: false}
	p.nodes[slot] = n
	if p.hand == policy.NoSlot {
		n.next, n.prev = slot, slot
		p.hand = slot
		return
	}
	head := p.nodes[p.hand]
	tail := p.nodes[head.prev]
	n.next = p.hand
	n.prev = head.prev
	tail.next = slot
	head.prev = slot
}

// OnRemove splices slot out of the circle, advancing the hand past it if the
// hand pointed at the removed slot.
func (p *clock[K]) OnRemove(slot policy.SlotIndex, _ K) {
	n, ok := p.nodes[slot]
	if !ok {
		return
	}
	if n.next == slot {
		// Sole member of the circle.
		p.hand = policy.NoSlot
	} else {
		prev, next := p.nodes[n.prev], p.nodes[n.next]
		prev.next = n.next
		next.prev = n.prev
		if p.hand == slot {
			p.hand = n.next
		}
	}
	delete(p.nodes, slot)
}

// SelectVictim advances the hand, clearing reference bits on eligible
// referenced entries (second chance; ineligible entries are skipped with
// their bit untouched) and returning the first eligible, unreferenced
// entry. The scan is bounded to two full rotations of the circle; if none is
// found in that budget, it reports no victim.
func (p *clock[K]) SelectVictim(eligible policy.Eligible) (policy.SlotIndex, bool) {
	if p.hand == policy.NoSlot {
		return policy.NoSlot, false
	}
	limit := 2 * len(p.nodes)
	for i := 0; i < limit; i++ {
		slot := p.hand
		n := p.nodes[slot]
		if !eligible(slot) {
			p.hand = n.next
			continue
		}
		if n.ref {
			n.ref = false
			p.hand = n.next
			continue
		}
		p.hand = n.next
		return slot, true
	}
	return policy.NoSlot, false
}

func (p *clock[K]) Name() string { return "CLOCK" }

func (p *clock[K]) DebugList() []policy.SlotIndex {
	out := make([]policy.SlotIndex, 0, len(p.nodes))
	if p.hand == policy.NoSlot {
		return out
	}
	start := p.hand
	slot := start
	for {
		out = append(out, slot)
		slot = p.nodes[slot].next
		if slot == start {
			break
		}
	}
	return out
}
