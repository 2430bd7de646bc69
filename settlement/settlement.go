// Package settlement computes lock, release and refund amounts for the
// matching engine. Functions here are pure: no I/O, no book access, so
// every balance invariant can be tested in isolation.
//
// The governing invariant: for an order with remaining quantity r,
//
//	lockedFor(r) = cost(r) + feeShare(r)   (buy, quote currency)
//	lockedFor(r) = r                       (sell, base currency)
//
// A fill of quantity q releases lockedFor(r) - lockedFor(r-q) and a
// cancellation refunds lockedFor(r). Computing releases as deltas of the
// same function means truncation can never leak funds: the per-fill
// releases plus the final refund always sum to the original lock.
package settlement

import (
	"errors"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/types"
)

// ErrNothingToCancel is returned for a refund request on a fully
// filled order. Fully filled orders have no locked remainder.
var ErrNothingToCancel = errors.New("settlement: nothing to cancel")

// LockedCost returns the funds reserved for an order's quantity, before
// fees: amount*price in quote currency for a buy, amount in base
// currency for a sell.
func LockedCost(side types.OrderSide, amount, price fixedpoint.Amount) fixedpoint.Amount {
	if side == types.SideBuy {
		return amount.Mul(price)
	}

	return amount
}

// LockedFee returns the total fee reserved at placement. Only buys
// pre-lock their fee; a sell's fee is deducted from quote proceeds at
// fill time and never locked.
func LockedFee(side types.OrderSide, amount, price, feeRate fixedpoint.Amount) fixedpoint.Amount {
	if side != types.SideBuy {
		return fixedpoint.Zero
	}

	return amount.Mul(price).Mul(feeRate)
}

// LockedFor returns the portion of the original lock still held for an
// unfilled remainder r. The fee share is proportional to r over the
// original amount, truncated once.
func LockedFor(side types.OrderSide, remaining, amount, price, feeTotal fixedpoint.Amount) fixedpoint.Amount {
	if side != types.SideBuy {
		return remaining
	}

	locked := remaining.Mul(price)
	if feeTotal.IsPositive() && amount.IsPositive() {
		locked = locked.Add(feeTotal.MulRatio(remaining, amount))
	}

	return locked
}

// CancelRefund returns the amount to unlock when cancelling an order
// with the given remainder. The refund covers exactly what is still
// locked for the unfilled tail, never the already-settled part.
func CancelRefund(side types.OrderSide, remaining, amount, price, feeTotal fixedpoint.Amount) (fixedpoint.Amount, error) {
	if !remaining.IsPositive() {
		return fixedpoint.Zero, ErrNothingToCancel
	}

	return LockedFor(side, remaining, amount, price, feeTotal), nil
}

// FillSettlement returns the quote-currency cost and fee attributable to
// a single fill event at the maker's price.
func FillSettlement(matchedQty, matchPrice, feeRate fixedpoint.Amount) (cost, fee fixedpoint.Amount) {
	cost = matchedQty.Mul(matchPrice)
	fee = cost.Mul(feeRate)

	return cost, fee
}

// FillRelease returns how much of the order's lock a fill of qty frees,
// as the delta of LockedFor across the fill. remaining is the order's
// remainder before the fill.
func FillRelease(side types.OrderSide, remaining, qty, amount, price, feeTotal fixedpoint.Amount) fixedpoint.Amount {
	before := LockedFor(side, remaining, amount, price, feeTotal)
	after := LockedFor(side, remaining.Sub(qty), amount, price, feeTotal)

	return before.Sub(after)
}
