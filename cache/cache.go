package cache

import (
	"fmt"
	"io"
	"sync"

	"github.com/IvanBrykalov/blockcache/policy"
)

// coordinator is the single implementation of Cache[K, V]. Every exported
// method takes mu for its whole duration: one exclusive mutex per instance,
// no sharding, no fine-grained per-entry locking.
type coordinator[K comparable, V any] struct {
	mu sync.Mutex

	slab    *slab[K, V]
	index   *primaryIndex[K]
	pol     policy.Policy[K]
	factory policy.Factory[K]

	// capacity is the logical admission limit. It is distinct from
	// slab.physicalCapacity(): the slab's backing array only ever grows, so
	// that growing Resize never needs to relocate entries or invalidate a
	// policy's SlotIndex bookkeeping. Shrinking Resize lowers capacity and
	// evicts down to it; the slots freed that way stay physically allocated
	// and simply return to the free stack for reuse.
	capacity int

	metrics Metrics

	hits, misses, evictions uint64

	closed bool
}

// New constructs a Cache with the given options. It panics if opts.Capacity
// is not positive or opts.Policy is nil — both are programmer errors, not
// runtime conditions a caller should recover from.
func New[K comparable, V any](opts Options[K, V]) Cache[K, V] {
	if opts.Capacity <= 0 {
		panic("cache: Capacity must be positive")
	}
	if opts.Policy == nil {
		panic("cache: Policy must not be nil")
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &coordinator[K, V]{
		slab:     newSlab[K, V](opts.Capacity),
		index:    newPrimaryIndex[K](opts.Capacity),
		pol:      opts.Policy.New(opts.Capacity),
		factory:  opts.Policy,
		capacity: opts.Capacity,
		metrics:  metrics,
	}
}

func (c *coordinator[K, V]) eligible(slot policy.SlotIndex) bool {
	return c.slab.at(slot).eligible()
}

func (c *coordinator[K, V]) Lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if c.closed {
		return zero, false
	}
	slot, ok := c.index.lookup(key)
	if !ok {
		c.misses++
		c.metrics.Miss()
		return zero, false
	}
	c.hits++
	c.metrics.Hit()
	c.pol.OnAccess(slot)
	return c.slab.at(slot).value, true
}

func (c *coordinator[K, V]) Insert(key K, value V) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}
	if slot, ok := c.index.lookup(key); ok {
		// Already resident: Insert never overwrites an existing key, but
		// still counts as an access.
		c.pol.OnAccess(slot)
		return false, nil
	}

	slot, ok := c.slab.alloc()
	if !ok || c.index.len() >= c.capacity {
		victim, found := c.pol.SelectVictim(c.eligible)
		if !found {
			if ok {
				c.slab.release(slot)
			}
			return false, ErrNotAdmitted
		}
		c.evict(victim, EvictPolicy)
		if !ok {
			// The slab had no free slot; evict just pushed the victim's
			// slot onto the free stack, so this draw returns that slot.
			slot, _ = c.slab.alloc()
		}
	}

	c.slab.at(slot).reset(slot, key, value)
	c.index.set(key, slot)
	c.pol.OnInsert(slot, key)
	c.metrics.Size(c.index.len(), c.capacity)
	return true, nil
}

func (c *coordinator[K, V]) Upsert(key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if slot, ok := c.index.lookup(key); ok {
		c.slab.at(slot).value = value
		c.pol.OnAccess(slot)
		return nil
	}

	slot, ok := c.slab.alloc()
	if !ok || c.index.len() >= c.capacity {
		victim, found := c.pol.SelectVictim(c.eligible)
		if !found {
			if ok {
				c.slab.release(slot)
			}
			return ErrNotAdmitted
		}
		c.evict(victim, EvictPolicy)
		if !ok {
			slot, _ = c.slab.alloc()
		}
	}

	c.slab.at(slot).reset(slot, key, value)
	c.index.set(key, slot)
	c.pol.OnInsert(slot, key)
	c.metrics.Size(c.index.len(), c.capacity)
	return nil
}

// evict removes the entry at slot from the index and policy, frees the
// slot, and records the eviction. The caller must already hold mu and must
// be about to reuse or discard the freed slot.
func (c *coordinator[K, V]) evict(slot policy.SlotIndex, reason EvictReason) {
	e := c.slab.at(slot)
	key := e.key
	c.index.delete(key)
	c.pol.OnRemove(slot, key)
	e.clear()
	c.slab.release(slot)
	c.evictions++
	c.metrics.Evict(reason)
}

func (c *coordinator[K, V]) MarkDirty(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if slot, ok := c.index.lookup(key); ok {
		c.slab.at(slot).dirty = true
	}
}

func (c *coordinator[K, V]) MarkClean(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if slot, ok := c.index.lookup(key); ok {
		c.slab.at(slot).dirty = false
	}
}

func (c *coordinator[K, V]) Pin(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if slot, ok := c.index.lookup(key); ok {
		c.slab.at(slot).pinCount++
	}
}

func (c *coordinator[K, V]) Unpin(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if slot, ok := c.index.lookup(key); ok {
		e := c.slab.at(slot)
		if e.pinCount > 0 {
			e.pinCount--
		}
	}
}

func (c *coordinator[K, V]) Invalidate(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	slot, ok := c.index.lookup(key)
	if !ok {
		return false
	}
	c.index.delete(key)
	c.pol.OnRemove(slot, key)
	c.slab.at(slot).clear()
	c.slab.release(slot)
	c.metrics.Size(c.index.len(), c.capacity)
	return true
}

func (c *coordinator[K, V]) GetDirty(limit int) []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []K
	if c.closed {
		return out
	}
	for _, e := range c.slab.entries {
		if !e.valid || !e.dirty {
			continue
		}
		out = append(out, e.key)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (c *coordinator[K, V]) Resize(newCapacity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || newCapacity < 0 {
		return c.index.len() > c.capacity
	}

	if newCapacity > c.slab.physicalCapacity() {
		c.slab.grow(newCapacity)
	}
	c.capacity = newCapacity

	for c.index.len() > c.capacity {
		victim, found := c.pol.SelectVictim(c.eligible)
		if !found {
			break
		}
		c.evict(victim, EvictResize)
	}
	c.metrics.Size(c.index.len(), c.capacity)
	return c.index.len() > c.capacity
}

func (c *coordinator[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	physicalCap := c.slab.physicalCapacity()
	c.slab = newSlab[K, V](physicalCap)
	c.index.reset()
	c.pol = c.factory.New(c.capacity)
	c.hits, c.misses, c.evictions = 0, 0, 0
	c.metrics.Size(0, c.capacity)
}

func (c *coordinator[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		UsedEntries: c.index.len(),
		Capacity:    c.capacity,
	}
}

func (c *coordinator[K, V]) Dump(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(w, "cache: policy=%s used=%d capacity=%d hits=%d misses=%d evictions=%d slots=%v\n",
		c.pol.Name(), c.index.len(), c.capacity, c.hits, c.misses, c.evictions, c.pol.DebugList())
	return err
}

func (c *coordinator[K, V]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

var _ Cache[int, int] = (*coordinator[int, int])(nil)
