package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/types"
)

type TradeEntity struct {
	ID          int64           `json:"id"`
	Market      string          `json:"market"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Total       decimal.Decimal `json:"total"`
	FeeCurrency string          `json:"fee_currency"`
	FeeAmount   decimal.Decimal `json:"fee_amount"`
	TakerType   types.OrderSide `json:"taker_type"`
	Side        types.OrderSide `json:"side"`
	OrderID     int64           `json:"order_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CancelAllResultEntity struct {
	OrderID int64  `json:"order_id"`
	Market  string `json:"market"`
	Error   string `json:"error,omitempty"`
}
