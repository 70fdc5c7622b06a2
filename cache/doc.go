// Package cache provides a fixed-capacity, generic in-memory cache with
// pluggable eviction policies (LRU, FIFO, LFU, CLOCK, SIEVE, ARC), pin/dirty
// tracking for write-back users, and lightweight metrics hooks.
//
// Design
//
//   - Concurrency: a single exclusive mutex guards the whole coordinator.
//     There is no sharding: this rewrite trades shard-level parallelism for
//     a simpler, provably consistent core; concurrency fan-out belongs at a
//     higher layer (see the
//     blockcache package's flush worker pool) rather than inside the cache.
//
//   - Storage: entries live in a fixed-layout slab addressed by SlotIndex, a
//     stable position that survives the slab growing on Resize. A primary
//     index (map[K]SlotIndex) gives O(1) expected lookup.
//
//   - Policies: eviction policy is pluggable via the policy package and
//     selected explicitly at construction — there is no default. Each policy
//     owns its own internal bookkeeping, addressed purely by SlotIndex (and,
//     for ARC's ghost entries, by key), so the Entry layout never changes
//     with the active policy.
//
//   - Eligibility: an entry may be evicted only while valid, unpinned
//     (pinCount == 0), and clean (!dirty). Pin/dirty are meant for write-back
//     callers that must not lose an entry mid-flush.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals. By
//     default NoopMetrics is used; plug a Prometheus adapter (see
//     metrics/prom) to export real numbers.
//
// Basic usage
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//		Capacity: 10_000,
//		Policy:   lru.New[string](),
//	})
//	c.Insert("a", []byte("1"))
//	if v, ok := c.Lookup("a"); ok {
//		_ = v // use value
//	}
//	c.Invalidate("a")
package cache
