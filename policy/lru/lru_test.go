package lru

import (
	"testing"

	"github.com/IvanBrykalov/blockcache/policy"
)

func alwaysEligible(policy.SlotIndex) bool { return true }

func TestLRU_SelectVictim_OldestFirst(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	p.OnInsert(2, "c")

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 0 {
		t.Fatalf("want victim 0 (oldest), got %v ok=%v", slot, ok)
	}
}

func TestLRU_OnAccess_PromotesToMRU(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	p.OnInsert(2, "c")

	p.OnAccess(0) // touch the oldest; it should no longer be the next victim

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 1 {
		t.Fatalf("want victim 1 after promoting 0, got %v ok=%v", slot, ok)
	}
}

func TestLRU_SelectVictim_SkipsIneligible(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	p.OnInsert(2, "c")

	eligible := func(s policy.SlotIndex) bool { return s != 0 }
	slot, ok := p.SelectVictim(eligible)
	if !ok || slot != 1 {
		t.Fatalf("want victim 1 (0 pinned), got %v ok=%v", slot, ok)
	}
}

func TestLRU_SelectVictim_EmptyReturnsFalse(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	if _, ok := p.SelectVictim(alwaysEligible); ok {
		t.Fatalf("empty policy must report no victim")
	}
}

func TestLRU_OnRemove_Unlinks(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	p.OnRemove(0, "a")

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 1 {
		t.Fatalf("want only remaining victim 1, got %v ok=%v", slot, ok)
	}
}

func TestLRU_Name(t *testing.T) {
	t.Parallel()

	if New[string]().New(1).Name() != "LRU" {
		t.Fatalf("unexpected policy name")
	}
}
