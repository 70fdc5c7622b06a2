package fifo

import (
	"testing"

	"github.com/IvanBrykalov/blockcache/policy"
)

func alwaysEligible(policy.SlotIndex) bool { return true }

func TestFIFO_SelectVictim_AdmissionOrder(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")
	p.OnInsert(2, "c")

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 0 {
		t.Fatalf("want victim 0 (first admitted), got %v ok=%v", slot, ok)
	}
}

func TestFIFO_OnAccess_DoesNotReorder(t *testing.T) {
	t.Parallel()

	p := New[string]().New(3)
	p.OnInsert(0, "a")
	p.OnInsert(1, "b")

	p.OnAccess(0) // access must not change FIFO order

	slot, ok := p.SelectVictim(alwaysEligible)
	if !ok || slot != 0 {
		t.Fatalf("want victim still 0 after access, got %v ok=%v", slot, ok)
	}
}

func TestFIFO_SelectVictim_SkipsIneligible(t *testing.T) {
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

func TestFIFO_OnRemove_Unlinks(t *testing.T) {
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
