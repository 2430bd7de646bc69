package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/types"
)

type OrderEntity struct {
	ID              int64               `json:"id"`
	UUID            uuid.UUID           `json:"uuid"`
	Market          string              `json:"market"`
	Side            types.OrderSide     `json:"side"`
	OrdType         types.OrderType     `json:"ord_type"`
	Price           decimal.NullDecimal `json:"price"`
	AvgPrice        decimal.Decimal     `json:"avg_price"`
	Status          types.OrderStatus   `json:"status"`
	OriginAmount    decimal.Decimal     `json:"origin_amount"`
	RemainingAmount decimal.Decimal     `json:"remaining_amount"`
	ExecutedAmount  decimal.Decimal     `json:"executed_amount"`
	FeeRate         decimal.Decimal     `json:"fee_rate"`
	TradesCount     int64               `json:"trades_count"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
