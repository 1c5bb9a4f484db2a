package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newItem(carriedOver int, unitPrice int64) *InventoryItem {
	item := &InventoryItem{
		Division:      "Metro North",
		Category:      "Metro North",
		ProductName:   "Closure 48C",
		Specification: "dome",
		CarriedOver:   carriedOver,
		UnitPrice:     decimal.NewFromInt(unitPrice),
	}
	item.Recalculate()
	return item
}

func TestRecalculateInvariant(t *testing.T) {
	item := newItem(10, 5)

	if item.Remaining != 10 {
		t.Fatalf("remaining = %d, want 10", item.Remaining)
	}
	if got := item.TotalAmount.IntPart(); got != 50 {
		t.Fatalf("total amount = %d, want 50", got)
	}

	item.ApplyIncoming(20)
	item.ApplyOutgoing(12)
	item.ApplyUsage(7)

	if item.Remaining != 18 {
		t.Fatalf("remaining = %d, want 18", item.Remaining)
	}
	if item.TeamStock() != 5 {
		t.Fatalf("team stock = %d, want 5", item.TeamStock())
	}
	if item.TotalStock() != 23 {
		t.Fatalf("total stock = %d, want 23", item.TotalStock())
	}
	if err := item.CheckConsistency(); err != nil {
		t.Fatalf("consistency check failed: %v", err)
	}
}

func TestUsageDoesNotTouchRemaining(t *testing.T) {
	item := newItem(0, 0)
	item.ApplyIncoming(100)
	item.ApplyOutgoing(40)

	before := item.Remaining
	item.ApplyUsage(35)

	if item.Remaining != before {
		t.Fatalf("usage changed remaining from %d to %d", before, item.Remaining)
	}
	if item.Usage != 35 {
		t.Fatalf("usage = %d, want 35", item.Usage)
	}
	if item.TeamStock() != 5 {
		t.Fatalf("team stock = %d, want 5", item.TeamStock())
	}
}

func TestReversalRestoresSnapshot(t *testing.T) {
	item := newItem(50, 3)
	item.ApplyIncoming(30)
	item.ApplyOutgoing(25)
	item.ApplyUsage(10)

	want := *item

	// Apply and reverse a burst of records in mixed order.
	item.ApplyOutgoing(8)
	item.ApplyIncoming(15)
	item.ApplyUsage(4)
	item.ApplyIncoming(-15)
	item.ApplyUsage(-4)
	item.ApplyOutgoing(-8)

	if item.Incoming != want.Incoming || item.Outgoing != want.Outgoing || item.Usage != want.Usage {
		t.Fatalf("accumulators not restored: got %d/%d/%d, want %d/%d/%d",
			item.Incoming, item.Outgoing, item.Usage, want.Incoming, want.Outgoing, want.Usage)
	}
	if item.Remaining != want.Remaining {
		t.Fatalf("remaining = %d, want %d", item.Remaining, want.Remaining)
	}
	if !item.TotalAmount.Equal(want.TotalAmount) {
		t.Fatalf("total amount = %s, want %s", item.TotalAmount, want.TotalAmount)
	}
	if err := item.CheckConsistency(); err != nil {
		t.Fatalf("consistency check failed: %v", err)
	}
}

func TestNegativeRemainingIsStillConsistent(t *testing.T) {
	// Dispatch paperwork can arrive before the matching receipt; the snapshot
	// must stay internally consistent even when the balance dips below zero.
	item := newItem(0, 0)
	item.ApplyOutgoing(5)

	if item.Remaining != -5 {
		t.Fatalf("remaining = %d, want -5", item.Remaining)
	}
	if err := item.CheckConsistency(); err != nil {
		t.Fatalf("consistency check failed: %v", err)
	}
}

func TestCheckConsistencyDetectsDrift(t *testing.T) {
	item := newItem(10, 0)
	item.ApplyIncoming(5)
	item.Remaining++ // simulate a corrupted snapshot

	if err := item.CheckConsistency(); err == nil {
		t.Fatal("expected drift to be detected")
	}
}

func TestItemIdentityNormalization(t *testing.T) {
	a := NewItemIdentity("  Metro North ", "Closure 48C", " dome ")
	b := NewItemIdentity("Metro North", "Closure 48C", "dome")

	if a != b {
		t.Fatalf("identities differ after trimming: %+v vs %+v", a, b)
	}

	item := newItem(0, 0)
	if item.Identity() != b {
		t.Fatalf("item identity = %+v, want %+v", item.Identity(), b)
	}
}
