package engines

import (
	"context"
	"time"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/journal"
	"github.com/zenithex/zenex/ledger"
	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/store"
)

// ReconcileWorker drains the reconcile outbox the engine writes to when
// a ledger or store call fails after the book was already mutated. It
// shares the outbox handle with the matching worker because pebble
// allows a single open handle per directory.
type ReconcileWorker struct {
	Outbox   *journal.Outbox
	Ledger   *ledger.Gateway
	Store    *store.OrderStore
	Interval time.Duration
}

func NewReconcileWorker(outbox *journal.Outbox, gateway *ledger.Gateway, order_store *store.OrderStore) *ReconcileWorker {
	return &ReconcileWorker{
		Outbox:   outbox,
		Ledger:   gateway,
		Store:    order_store,
		Interval: 30 * time.Second,
	}
}

func (w *ReconcileWorker) Run() {
	for {
		if err := w.Drain(); err != nil {
			config.Logger.Errorf("Reconcile sweep failed: %v", err)
		}

		time.Sleep(w.Interval)
	}
}

// Drain replays every pending entry once. Entries that still fail stay
// queued for the next sweep, so a dead downstream never loses writes.
func (w *ReconcileWorker) Drain() error {
	return w.Outbox.Scan(func(seq uint64, entry *matching.ReconcileEntry) error {
		if err := w.apply(entry); err != nil {
			config.Logger.Warnf("Reconcile entry %d (%s) still failing: %v", seq, entry.Kind, err)
			return nil
		}

		config.Logger.Infof("Reconciled entry %d (%s) for order %d", seq, entry.Kind, entry.OrderID)

		return w.Outbox.Delete(seq)
	})
}

func (w *ReconcileWorker) apply(entry *matching.ReconcileEntry) error {
	ctx := context.Background()

	switch entry.Kind {
	case matching.ReconcileFill:
		return w.Ledger.SettleFill(ctx, entry.Fill)
	case matching.ReconcileRefund:
		return w.Ledger.UnlockAndCredit(ctx, entry.MemberID, entry.Currency, entry.Amount)
	case matching.ReconcilePersist:
		return w.Store.PersistOrder(ctx, entry.Order)
	default:
		config.Logger.Errorf("Unknown reconcile kind: %s", entry.Kind)
		return nil
	}
}
