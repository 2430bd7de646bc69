package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/settlement"
	"github.com/zenithex/zenex/types"
)

// Order is the engine-side view of an order. Identity and terms are
// immutable after submission; Remaining, Cost, Fee, Locked and Status
// are mutated only by the engine under the symbol lock.
type Order struct {
	ID        int64             `json:"id"`
	UUID      uuid.UUID         `json:"uuid"`
	MemberID  int64             `json:"member_id"`
	Symbol    string            `json:"symbol"`
	BaseUnit  string            `json:"base_unit"`
	QuoteUnit string            `json:"quote_unit"`
	Side      types.OrderSide   `json:"side"`
	Type      types.OrderType   `json:"type"`
	Price     fixedpoint.Amount `json:"price"`
	Amount    fixedpoint.Amount `json:"amount"`
	FeeRate   fixedpoint.Amount `json:"fee_rate"`

	Remaining fixedpoint.Amount `json:"remaining"`
	Cost      fixedpoint.Amount `json:"cost"`
	Fee       fixedpoint.Amount `json:"fee"`
	FeeTotal  fixedpoint.Amount `json:"fee_total"`
	Locked    fixedpoint.Amount `json:"locked"`
	Status    types.OrderStatus `json:"status"`

	// Sequence is the per-symbol book insertion counter; FIFO priority
	// within a price level is decided by it, never by wall-clock time.
	Sequence  uint64    `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOrder builds a validated limit or market order with its lock
// amounts computed. Market orders carry no price; their lock is
// computed against the live book at submit time.
func NewOrder(memberID int64, symbol, baseUnit, quoteUnit string, side types.OrderSide, ordType types.OrderType, price, amount, feeRate fixedpoint.Amount) (*Order, error) {
	if !amount.IsPositive() {
		return nil, newError(KindInvalidAmount, 0, nil)
	}
	if side != types.SideBuy && side != types.SideSell {
		return nil, newError(KindInvalidAmount, 0, nil)
	}

	o := &Order{
		UUID:      uuid.New(),
		MemberID:  memberID,
		Symbol:    symbol,
		BaseUnit:  baseUnit,
		QuoteUnit: quoteUnit,
		Side:      side,
		Type:      ordType,
		Price:     price,
		Amount:    amount,
		FeeRate:   feeRate,
		Remaining: amount,
		Status:    types.StatusOpen,
		CreatedAt: time.Now(),
	}

	switch ordType {
	case types.TypeLimit:
		if !price.IsPositive() {
			return nil, newError(KindInvalidAmount, 0, nil)
		}

		o.FeeTotal = settlement.LockedFee(side, amount, price, feeRate)
		o.Locked = settlement.LockedCost(side, amount, price).Add(o.FeeTotal)
	case types.TypeMarket:
		if price.IsPositive() {
			return nil, newError(KindInvalidAmount, 0, nil)
		}
	default:
		return nil, newError(KindInvalidAmount, 0, nil)
	}

	return o, nil
}

// Filled reports whether nothing remains to match.
func (o *Order) Filled() bool {
	return o.Remaining.IsZero()
}

func (o *Order) FilledQuantity() fixedpoint.Amount {
	return o.Amount.Sub(o.Remaining)
}

func (o *Order) IsOpen() bool {
	return o.Status == types.StatusOpen || o.Status == types.StatusPartiallyFilled
}

// Crosses reports whether the order would trade at the given opposing
// price. Market orders cross any price.
func (o *Order) Crosses(price fixedpoint.Amount) bool {
	if o.Type == types.TypeMarket {
		return true
	}

	if o.Side == types.SideBuy {
		return !price.GreaterThan(o.Price)
	}

	return !price.LessThan(o.Price)
}

// OutcomeCurrency is the currency an order spends: quote for buys,
// base for sells.
func (o *Order) OutcomeCurrency() string {
	if o.Side == types.SideBuy {
		return o.QuoteUnit
	}

	return o.BaseUnit
}

// IncomeCurrency is the currency an order receives.
func (o *Order) IncomeCurrency() string {
	if o.Side == types.SideBuy {
		return o.BaseUnit
	}

	return o.QuoteUnit
}

// release computes how much of the lock a fill of qty at matchPrice
// frees. Limit orders release the delta of the locked-for function over
// their own price; market buys lock actual cost plus fee.
func (o *Order) release(qty, cost, fee fixedpoint.Amount) fixedpoint.Amount {
	if o.Type == types.TypeMarket && o.Side == types.SideBuy {
		return fixedpoint.Min(o.Locked, cost.Add(fee))
	}

	return settlement.FillRelease(o.Side, o.Remaining, qty, o.Amount, o.Price, o.FeeTotal)
}

// applyFill mutates the order for one matched quantity. filled+remaining
// always equals the original amount; status flips to FILLED exactly when
// the remainder reaches zero.
func (o *Order) applyFill(qty, cost, fee, release fixedpoint.Amount) {
	o.Remaining = o.Remaining.Sub(qty)
	o.Cost = o.Cost.Add(cost)
	o.Fee = o.Fee.Add(fee)
	o.Locked = o.Locked.Sub(release)

	if o.Remaining.IsZero() {
		o.Status = types.StatusFilled
	} else {
		o.Status = types.StatusPartiallyFilled
	}
}

// Key identifies an order inside the book.
type OrderKey struct {
	ID       int64
	Symbol   string
	Side     types.OrderSide
	Price    fixedpoint.Amount
	Sequence uint64
}

func (o *Order) Key() *OrderKey {
	return &OrderKey{
		ID:       o.ID,
		Symbol:   o.Symbol,
		Side:     o.Side,
		Price:    o.Price,
		Sequence: o.Sequence,
	}
}
