package journal

import (
	"testing"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/matching"
)

func TestOutboxEnqueueScanDelete(t *testing.T) {
	outbox, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer outbox.Close()

	first := &matching.ReconcileEntry{
		Kind:     matching.ReconcileRefund,
		OrderID:  7,
		MemberID: 3,
		Currency: "USDT",
		Amount:   fixedpoint.New(400),
	}
	second := &matching.ReconcileEntry{
		Kind:    matching.ReconcileFill,
		OrderID: 8,
		Fill:    &matching.FillSettlement{Symbol: "BTC/USDT"},
	}

	if err := outbox.Enqueue(first); err != nil {
		t.Fatal(err)
	}
	if err := outbox.Enqueue(second); err != nil {
		t.Fatal(err)
	}

	var got []*matching.ReconcileEntry
	var seqs []uint64
	err = outbox.Scan(func(seq uint64, entry *matching.ReconcileEntry) error {
		got = append(got, entry)
		seqs = append(seqs, seq)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].OrderID != 7 || got[1].OrderID != 8 {
		t.Error("entries must come back in insertion order")
	}
	if !got[0].Amount.Equal(fixedpoint.New(400)) {
		t.Errorf("refund amount = %s, want 400", got[0].Amount)
	}
	if got[1].Fill == nil || got[1].Fill.Symbol != "BTC/USDT" {
		t.Error("fill payload lost in round trip")
	}

	if err := outbox.Delete(seqs[0]); err != nil {
		t.Fatal(err)
	}

	count := 0
	outbox.Scan(func(uint64, *matching.ReconcileEntry) error {
		count++
		return nil
	})
	if count != 1 {
		t.Errorf("expected 1 entry after delete, got %d", count)
	}
}

func TestOutboxSequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	outbox, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := outbox.Enqueue(&matching.ReconcileEntry{Kind: matching.ReconcileRefund, OrderID: 1}); err != nil {
		t.Fatal(err)
	}
	outbox.Close()

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if err := reopened.Enqueue(&matching.ReconcileEntry{Kind: matching.ReconcileRefund, OrderID: 2}); err != nil {
		t.Fatal(err)
	}

	var orderIDs []int64
	reopened.Scan(func(_ uint64, entry *matching.ReconcileEntry) error {
		orderIDs = append(orderIDs, entry.OrderID)
		return nil
	})

	if len(orderIDs) != 2 || orderIDs[0] != 1 || orderIDs[1] != 2 {
		t.Errorf("expected orders [1 2] in sequence order, got %v", orderIDs)
	}
}
