package matching

import (
	"context"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/types"
)

// FillParty describes one side of a fill settlement. Spend is debited
// from the party's locked balance, Refund is the unlocked surplus
// returned to the free balance (price improvement on buys), Proceeds is
// credited to the free balance in the income currency.
type FillParty struct {
	OrderID          int64             `json:"order_id"`
	MemberID         int64             `json:"member_id"`
	Side             types.OrderSide   `json:"side"`
	SpendCurrency    string            `json:"spend_currency"`
	ProceedsCurrency string            `json:"proceeds_currency"`
	Spend            fixedpoint.Amount `json:"spend"`
	Refund           fixedpoint.Amount `json:"refund"`
	Proceeds         fixedpoint.Amount `json:"proceeds"`
	Fee              fixedpoint.Amount `json:"fee"`
}

// FillSettlement is the balance mutation for one match event, applied
// atomically by the ledger gateway. Fees are collected in the quote
// currency.
type FillSettlement struct {
	Symbol      string            `json:"symbol"`
	FeeCurrency string            `json:"fee_currency"`
	Maker       FillParty         `json:"maker"`
	Taker       FillParty         `json:"taker"`
	Revenue     fixedpoint.Amount `json:"revenue"`
	Sequence    uint64            `json:"sequence"`
}

// LedgerGateway is the wallet balance service. Balance storage is owned
// elsewhere; the engine only demands that each call is an atomic update
// scoped to a (member, currency) balance record.
type LedgerGateway interface {
	LockFunds(ctx context.Context, memberID int64, currency string, amount fixedpoint.Amount) error
	UnlockAndCredit(ctx context.Context, memberID int64, currency string, amount fixedpoint.Amount) error
	SettleFill(ctx context.Context, fill *FillSettlement) error
}

// OrderStore is the durable order/fill storage consumed by the engine.
type OrderStore interface {
	PersistOrder(ctx context.Context, o *Order) error
	UpdateOrderFill(ctx context.Context, o *Order, trade *Trade) error
	MarkCanceled(ctx context.Context, o *Order) error
	OpenOrdersBySymbol(ctx context.Context, symbol string) ([]*Order, error)
	OpenOrdersByMember(ctx context.Context, memberID int64) ([]*Order, error)
	FindOrder(ctx context.Context, memberID, orderID int64) (*Order, error)
}

// EventPublisher pushes order/trade/cancel events to downstream
// consumers. Delivery is at-least-once; consumers deduplicate by order
// id plus fill sequence.
type EventPublisher interface {
	PublishOrder(o *Order) error
	PublishTrade(trade *Trade) error
	PublishCancel(o *Order) error
	PublishDepth(symbol string, depth types.Depth) error
}

// ReconcileEntry records an external call that failed after the book
// was already mutated. Entries are drained by the reconciliation job
// with bounded retries.
type ReconcileEntry struct {
	Kind     string            `json:"kind"` // "fill" or "refund"
	OrderID  int64             `json:"order_id"`
	MemberID int64             `json:"member_id"`
	Currency string            `json:"currency,omitempty"`
	Amount   fixedpoint.Amount `json:"amount,omitempty"`
	Fill     *FillSettlement   `json:"fill,omitempty"`
	Order    *Order            `json:"order,omitempty"`
}

const (
	ReconcileFill    = "fill"
	ReconcileRefund  = "refund"
	ReconcilePersist = "persist"
)

// ReconcileOutbox is the durable queue for entries awaiting manual or
// scheduled reconciliation.
type ReconcileOutbox interface {
	Enqueue(entry *ReconcileEntry) error
}
