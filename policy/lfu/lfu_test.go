package lfu

import (
	"testing"

	"github.com/IvanBrykalov/blockcache/policy"
)

func alwaysEligible(policy.SlotIndex) bool { return true }

func TestLFU_SelectVictim_LowestCountFirst(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	p.OnInsert(2, "c")

	p.OnAccess(1) // count(1)=2, count(0)=count(2)=1

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 0 {
		t.Fatalf("want victim 0 (lowest count, oldest), got %v ok=%v", slot, ok)
	}
}

func TestLFU_TieBreak_FIFOWithinBucket(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	// both at count 1; 0 was admitted first so it sits at the bucket's head

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 0 {
		t.Fatalf("want victim 0 (tie broken by admission order), got %v ok=%v", slot, ok)
	}
}

func TestLFU_SelectVictim_SkipsIneligible(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")

	eligible := func(s policy.SlotIndex) bool { return s != 0 }
	slot, ok := p.SelectVictim(eligible)
	if !ok || slot != 1 {
		t.Fatalf("want victim 1 (0 pinned), got %v ok=%v", slot, ok)
	}
}

func TestLFU_MinCountAdvancesWhenBucketEmptied(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	p.OnRemove(0, "a") // 1 is now the count-1 bucket's only occupant

	// Bump 1 so count-1 bucket is genuinely empty and minCount must advance.
	p.OnAccess(1)

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 1 {
		t.Fatalf("want only remaining victim 1, got %v ok=%v", slot, ok)
	}
}

func TestLFU_SelectVictim_EmptyReturnsFalse(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	if _, ok := p.SelectVictim(alwaysEligible); ok {
		t.Fatalf("empty policy must report no victim")
	}
}

func TestLFU_Name(t *testing.T) {
	t.Parallel()

	if New[string]().New(1).Name() != "LFU" {
		t.Fatalf("unexpected policy name")
	}
}
