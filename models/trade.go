package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/controllers/entities"
	"github.com/zenithex/zenex/types"
)

// Trade rows are append-only; one row per match event. MakerFee and
// TakerFee are the absolute fee amounts collected in the quote
// currency, not rates.
type Trade struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	Price        decimal.Decimal `json:"price" validate:"ValidatePrice"`
	Amount       decimal.Decimal `json:"amount" validate:"ValidateAmount"`
	Total        decimal.Decimal `json:"total" validate:"ValidateTotal"`
	MakerOrderID int64           `json:"maker_order_id"`
	TakerOrderID int64           `json:"taker_order_id"`
	MarketID     string          `json:"market_id"`
	MakerID      int64           `json:"maker_id"`
	TakerID      int64           `json:"taker_id"`
	MakerFee     decimal.Decimal `json:"maker_fee" gorm:"default:0.0"`
	TakerFee     decimal.Decimal `json:"taker_fee" gorm:"default:0.0"`
	TakerType    types.OrderSide `json:"taker_type"`
	Sequence     uint64          `json:"sequence"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (t Trade) ValidatePrice(Price decimal.Decimal) bool {
	return Price.IsPositive()
}

func (t Trade) ValidateAmount(Amount decimal.Decimal) bool {
	return Amount.IsPositive()
}

func (t Trade) ValidateTotal(Total decimal.Decimal) bool {
	return Total.IsPositive()
}

func (t *Trade) Market() *Market {
	market := &Market{}

	config.DataBase.First(&market, "symbol = ?", t.MarketID)

	return market
}

func (t *Trade) Maker() *Member {
	member := &Member{}

	config.DataBase.First(&member, "id = ?", t.MakerID)

	return member
}

func (t *Trade) Taker() *Member {
	member := &Member{}

	config.DataBase.First(&member, "id = ?", t.TakerID)

	return member
}

func (t *Trade) MakerOrder() *Order {
	order := &Order{}
	config.DataBase.First(&order, "id = ?", t.MakerOrderID)
	return order
}

func (t *Trade) TakerOrder() *Order {
	order := &Order{}
	config.DataBase.First(&order, "id = ?", t.TakerOrderID)
	return order
}

func (t *Trade) OrderForMember(member *Member) *Order {
	if member.ID == t.MakerID {
		return t.MakerOrder()
	} else {
		return t.TakerOrder()
	}
}

func (t *Trade) FeeForOrder(order *Order) decimal.Decimal {
	if t.MakerOrderID == order.ID {
		return t.MakerFee
	} else {
		return t.TakerFee
	}
}

func (t *Trade) WriteToInflux() {
	price, _ := t.Price.Float64()
	amount, _ := t.Amount.Float64()
	total, _ := t.Total.Float64()

	tags := map[string]string{"market": t.MarketID}
	fields := map[string]interface{}{
		"id":         int32(t.ID),
		"price":      price,
		"amount":     amount,
		"total":      total,
		"taker_type": string(t.TakerType),
		"created_at": t.CreatedAt,
	}

	config.InfluxDB.NewPoint("trades", tags, fields)
}

func (t *Trade) ToJSON(member *Member) entities.TradeEntity {
	order := t.OrderForMember(member)

	return entities.TradeEntity{
		ID:          t.ID,
		Market:      t.MarketID,
		Price:       t.Price,
		Amount:      t.Amount,
		Total:       t.Total,
		FeeCurrency: t.Market().QuoteUnit,
		FeeAmount:   t.FeeForOrder(order),
		TakerType:   t.TakerType,
		Side:        order.Side,
		OrderID:     order.ID,
		CreatedAt:   t.CreatedAt,
	}
}

type TradeGlobalJSON struct {
	ID        int64           `json:"id"`
	Market    string          `json:"market"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Total     decimal.Decimal `json:"total"`
	TakerType types.OrderSide `json:"taker_type"`
	CreatedAt time.Time       `json:"created_at"`
}

func (t *Trade) TradeGlobalJSON() TradeGlobalJSON {
	return TradeGlobalJSON{
		ID:        t.ID,
		Market:    t.MarketID,
		Price:     t.Price,
		Amount:    t.Amount,
		Total:     t.Total,
		TakerType: t.TakerType,
		CreatedAt: t.CreatedAt,
	}
}
