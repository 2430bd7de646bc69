package matching

import (
	"errors"
	"fmt"

	"github.com/zenithex/zenex/settlement"
)

type ErrorKind string

const (
	KindInvalidAmount         ErrorKind = "market.order.invalid_amount"
	KindOrderNotFound         ErrorKind = "market.order.not_found"
	KindOrderNotOpen          ErrorKind = "market.order.not_open"
	KindNothingToCancel       ErrorKind = "market.order.nothing_to_cancel"
	KindInsufficientBalance   ErrorKind = "market.account.insufficient_balance"
	KindInsufficientLiquidity ErrorKind = "market.order.insufficient_market_liquidity"
	KindWalletNotFound        ErrorKind = "market.account.wallet_not_found"
	KindExternalTimeout       ErrorKind = "market.engine.external_timeout"
	KindExternalError         ErrorKind = "market.engine.external_error"
)

// Error carries the failure kind plus the offending order id so the API
// layer can render a user-facing message without leaking engine state.
type Error struct {
	Kind    ErrorKind
	OrderID int64
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (order %d): %v", e.Kind, e.OrderID, e.Err)
	}

	return fmt.Sprintf("%s (order %d)", e.Kind, e.OrderID)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a taxonomy error; collaborator implementations use it
// to report domain failures the engine should not re-wrap.
func NewError(kind ErrorKind, orderID int64, err error) *Error {
	return &Error{Kind: kind, OrderID: orderID, Err: err}
}

func newError(kind ErrorKind, orderID int64, err error) *Error {
	return NewError(kind, orderID, err)
}

// IsKind reports whether err is a matching error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}

	return kind == KindNothingToCancel && errors.Is(err, settlement.ErrNothingToCancel)
}

// KindOf maps an error to its taxonomy kind, translating the settlement
// package's sentinel.
func KindOf(err error) ErrorKind {
	if errors.Is(err, settlement.ErrNothingToCancel) {
		return KindNothingToCancel
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}
