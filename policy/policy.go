// Package policy defines the capability contract shared by every eviction
// strategy the cache coordinator can drive.
//
// A policy never sees values or dirty/pin state, and sees keys only when an
// entry is inserted or removed. Otherwise the coordinator addresses resident
// entries purely by SlotIndex (their stable
// position in the cache's slab) and hands the policy an Eligible closure to
// ask "would you be allowed to evict this slot right now". This keeps every
// policy's internal bookkeeping (lists, buckets, ghost sets) independent of
// the coordinator's locking and of the Entry struct's layout — a policy that
// needs extra per-entry state (LFU's access count, CLOCK's reference bit,
// ARC's ghost lists) owns that state itself, keyed by SlotIndex or, for ARC's
// ghost entries, by the cache's key type.
package policy

// SlotIndex identifies a slot in the cache's slab. NoSlot is the sentinel for
// "no such slot" and is returned instead of a native -1 so call sites read as
// intent rather than a magic number.
type SlotIndex int32

// NoSlot is the sentinel value meaning "absent".
const NoSlot SlotIndex = -1

// Valid reports whether s identifies a real slot.
func (s SlotIndex) Valid() bool { return s != NoSlot }

// Eligible reports whether the entry at slot may be evicted right now
// (valid, unpinned, and clean — see the cache package's eligibility rule).
// Policies must treat it as a pure predicate: calling it must not be assumed
// to have side effects, and it may be called any number of times during a
// single SelectVictim scan.
type Eligible func(slot SlotIndex) bool

// Policy is a cache-bound eviction strategy instance. All methods are called
// by the coordinator under its single lock; a Policy implementation never
// needs its own synchronization.
type Policy[K comparable] interface {
	// OnAccess records a hit: a Lookup that found slot resident, or an Insert
	// of a key that was already resident. Implementations typically promote
	// the slot (e.g. move it to MRU, bump a frequency counter).
	OnAccess(slot SlotIndex)

	// OnInsert records a brand-new resident entry at slot for key. Called
	// once per successful admission, after the slot has been populated.
	OnInsert(slot SlotIndex, key K)

	// OnRemove unlinks slot (and, where relevant, key) from the policy's
	// internal structures. Called for both explicit invalidation and
	// eviction, after the coordinator has removed the key from the primary
	// index and before it clears the entry and returns the slot to the free
	// stack.
	OnRemove(slot SlotIndex, key K)

	// SelectVictim returns the next slot this policy would evict that also
	// satisfies eligible, or (NoSlot, false) if no eligible slot exists.
	// Implementations may perform bounded bookkeeping while scanning (e.g.
	// clearing CLOCK/SIEVE bits) but must leave their structures consistent
	// whether or not a victim is found.
	SelectVictim(eligible Eligible) (SlotIndex, bool)

	// Name returns a short human-readable tag for observability/debugging.
	Name() string

	// DebugList returns the slots currently tracked by the policy, in the
	// policy's natural iteration order. It exists purely for invariant
	// checking and state dumps; production code must never depend on the
	// order it returns.
	DebugList() []SlotIndex
}

// Factory constructs a fresh Policy instance bound to a cache of the given
// capacity. A Factory value itself carries no mutable state (every policy
// derives its sizing from the capacity passed to New), so the same Factory
// can be reused across many cache instances.
type Factory[K comparable] interface {
	New(capacity int) Policy[K]
}
