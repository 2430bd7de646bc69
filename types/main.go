package types

import "github.com/shopspring/decimal"

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}

	return SideBuy
}

type OrderType string

const (
	TypeLimit  OrderType = "limit"
	TypeMarket OrderType = "market"
)

type OrderStatus string

const (
	StatusOpen            OrderStatus = "open"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCanceled        OrderStatus = "canceled"
)

type TakerType = OrderSide

type PayloadAction = string

const (
	ActionSubmit    PayloadAction = "submit"
	ActionCancel    PayloadAction = "cancel"
	ActionCancelAll PayloadAction = "cancel_all"
	ActionReload    PayloadAction = "reload"
)

type OrderByDirection = string

const (
	OrderByAsc  OrderByDirection = "asc"
	OrderByDesc OrderByDirection = "desc"
)

// Ticker is the rolling 24h market summary cached in redis by the
// ticker cron job.
type Ticker struct {
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Last   decimal.Decimal `json:"last"`
	Volume decimal.Decimal `json:"volume"`
	Amount decimal.Decimal `json:"amount"`
	At     int64           `json:"at"`
}

// Depth is the JSON shape of an aggregated order book snapshot
// published to downstream consumers.
type Depth struct {
	Asks     [][]decimal.Decimal `json:"asks"`
	Bids     [][]decimal.Decimal `json:"bids"`
	Sequence uint64              `json:"sequence"`
}
