package cache

import "github.com/IvanBrykalov/blockcache/policy"

// Options configures a Cache. The zero value is not usable: Capacity and
// Policy must both be set explicitly — this package deliberately has no
// "nil Policy => LRU" default, so that the choice of replacement strategy
// (which changes observable eviction order) is always visible at the call
// site.
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries.
	Capacity int

	// Policy selects the eviction strategy (see the policy/lru, policy/fifo,
	// policy/lfu, policy/clock, policy/sieve, and policy/arc packages).
	Policy policy.Factory[K]

	// Metrics receives Hit/Miss/Evict/Size signals. Nil defaults to
	// NoopMetrics.
	Metrics Metrics
}
