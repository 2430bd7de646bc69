package engines

import (
	"context"
	"encoding/json"
	"os"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/journal"
	"github.com/zenithex/zenex/ledger"
	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/models"
	"github.com/zenithex/zenex/mq_client"
	"github.com/zenithex/zenex/store"
	"github.com/zenithex/zenex/types"
)

type MatchingWorker struct {
	Engine *matching.Engine
	Store  *store.OrderStore
	Events *mq_client.Publisher
	Outbox *journal.Outbox
}

func NewMatchingWorker() *MatchingWorker {
	outbox_dir := os.Getenv("RECONCILE_OUTBOX_DIR")
	if len(outbox_dir) == 0 {
		outbox_dir = "data/outbox"
	}

	outbox, err := journal.Open(outbox_dir)
	if err != nil {
		config.Logger.Fatalf("Failed to open reconcile outbox: %v", err)
	}

	order_store := store.New(config.DataBase)
	publisher := mq_client.NewPublisher()
	gateway := ledger.New(config.DataBase)

	worker := &MatchingWorker{
		Engine: matching.NewEngine(matching.Options{
			Ledger: gateway,
			Store:  order_store,
			Events: publisher,
			Outbox: outbox,
			Logger: config.Logger.WithField("worker", "matching"),
		}),
		Store:  order_store,
		Events: publisher,
		Outbox: outbox,
	}

	worker.Reload("all")

	reconciler := NewReconcileWorker(outbox, gateway, order_store)
	go reconciler.Run()

	return worker
}

func (w *MatchingWorker) Process(payload []byte) error {
	var payload_message matching.PayloadMessage
	if err := json.Unmarshal(payload, &payload_message); err != nil {
		config.Logger.Errorf("Failed to decode matching payload: %v", err)
		return err
	}

	switch payload_message.Action {
	case types.ActionSubmit:
		return w.SubmitOrder(payload_message.Order)
	case types.ActionCancel:
		return w.CancelOrder(payload_message.MemberID, payload_message.OrderID, payload_message.Symbol)
	case types.ActionCancelAll:
		return w.CancelMemberOrders(payload_message.MemberID)
	case types.ActionReload:
		w.Reload(payload_message.Symbol)
	default:
		config.Logger.Errorf("Unknown matching action: %s", payload_message.Action)
	}

	return nil
}

func (w *MatchingWorker) SubmitOrder(order *matching.Order) error {
	_, err := w.Engine.Submit(context.Background(), order)
	if err != nil {
		// The api layer already persisted the row, so a rejected
		// submission has to be closed out here or it would sit in the
		// open orders list forever.
		w.rejectOrder(order, err)
	}

	return err
}

func (w *MatchingWorker) rejectOrder(order *matching.Order, submit_err error) {
	if order == nil || order.ID == 0 {
		return
	}

	config.Logger.Warnf("Order %d rejected: %v", order.ID, submit_err)

	order.Status = types.StatusCanceled
	if err := w.Store.MarkCanceled(context.Background(), order); err != nil {
		config.Logger.Errorf("Failed to close rejected order %d: %v", order.ID, err)
		return
	}

	if err := w.Events.PublishCancel(order); err != nil {
		config.Logger.Errorf("Failed to publish cancel for order %d: %v", order.ID, err)
	}
}

func (w *MatchingWorker) CancelOrder(member_id, order_id int64, symbol string) error {
	err := w.Engine.Cancel(context.Background(), member_id, order_id, symbol)
	if err != nil && matching.IsKind(err, matching.KindOrderNotOpen) {
		// Raced with a fill. Nothing to undo.
		return nil
	}

	return err
}

func (w *MatchingWorker) CancelMemberOrders(member_id int64) error {
	results, err := w.Engine.CancelAll(context.Background(), member_id)
	if err != nil {
		return err
	}

	for _, result := range results {
		if len(result.Error) > 0 {
			config.Logger.Errorf("Cancel all: order %d failed: %s", result.OrderID, result.Error)
		}
	}

	return nil
}

func (w *MatchingWorker) Reload(symbol string) {
	if symbol == "all" {
		for _, market := range models.EnabledMarkets() {
			w.InitializeEngine(market.Symbol)
		}
		config.Logger.Info("All books reloaded.")
	} else {
		w.InitializeEngine(symbol)
	}
}

func (w *MatchingWorker) InitializeEngine(symbol string) {
	if err := w.Engine.Reload(context.Background(), symbol); err != nil {
		config.Logger.Errorf("Failed to reload %s book: %v", symbol, err)
		return
	}

	config.Logger.Infof("%v book reloaded.", symbol)
}
