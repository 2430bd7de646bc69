package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/controllers/entities"
	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/models/concerns"
	"github.com/zenithex/zenex/mq_client"
	"github.com/zenithex/zenex/types"
)

var precision_validator = &concerns.PrecisionValidator{}

// Order is the persisted view of an order. The engine mutates its copy
// in memory; the store layer writes the mutable columns back after each
// fill or cancellation.
type Order struct {
	ID           int64               `json:"id" gorm:"primaryKey"`
	UUID         uuid.UUID           `json:"uuid" gorm:"default:gen_random_uuid()"`
	MemberID     int64               `json:"member_id" validate:"required"`
	MarketID     string              `json:"market_id" validate:"required"`
	Side         types.OrderSide     `json:"side" validate:"SideValidator"`
	OrdType      types.OrderType     `json:"ord_type" validate:"OrdTypeValidator"`
	Price        decimal.NullDecimal `json:"price" validate:"PriceValidator"`
	Amount       decimal.Decimal     `json:"amount" validate:"AmountValidator"`
	Remaining    decimal.Decimal     `json:"remaining"`
	FeeRate      decimal.Decimal     `json:"fee_rate" gorm:"default:0.0"`
	FeeTotal     decimal.Decimal     `json:"fee_total" gorm:"default:0.0"`
	Cost         decimal.Decimal     `json:"cost" gorm:"default:0.0"`
	Fee          decimal.Decimal     `json:"fee" gorm:"default:0.0"`
	Locked       decimal.Decimal     `json:"locked" gorm:"default:0.0"`
	OriginLocked decimal.Decimal     `json:"origin_locked" gorm:"default:0.0"`
	TradesCount  int64               `json:"trades_count" gorm:"default:0"`
	Status       types.OrderStatus   `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (o Order) Message() map[string]string {
	invalid_message := "market.order.invalid_{field}"

	return validate.MS{
		"required": invalid_message,
	}
}

func (o Order) SideValidator(side types.OrderSide) bool {
	return side == types.SideBuy || side == types.SideSell
}

func (o Order) OrdTypeValidator(ord_type types.OrderType) bool {
	if o.OrdType == types.TypeMarket {
		return !o.Price.Valid
	}

	return o.OrdType == types.TypeLimit
}

func (o Order) PriceValidator(Price decimal.NullDecimal) bool {
	if o.OrdType == types.TypeMarket {
		return true // skip
	}

	dPrice := Price.Decimal

	market := o.Market()
	PricePrecision := int32(market.PricePrecision)

	if dPrice.LessThanOrEqual(decimal.Zero) {
		return false
	}

	if !precision_validator.LessThanOrEqTo(dPrice, PricePrecision) {
		return false
	}

	if dPrice.GreaterThan(market.MaxPrice) && market.MaxPrice.IsPositive() || dPrice.LessThan(market.MinPrice) && market.MinPrice.IsPositive() {
		return false
	}

	return true
}

func (o Order) AmountValidator(Amount decimal.Decimal) bool {
	market := o.Market()
	AmountPrecision := int32(market.AmountPrecision)

	if !Amount.IsPositive() {
		return false
	}

	if !precision_validator.LessThanOrEqTo(Amount, AmountPrecision) {
		return false
	}

	if Amount.LessThan(market.MinAmount) {
		return false
	}

	return true
}

func (o *Order) Market() *Market {
	market := &Market{}

	config.DataBase.First(market, "symbol = ?", o.MarketID)

	return market
}

func (o *Order) Member() *Member {
	var member *Member

	config.DataBase.First(&member, o.MemberID)

	return member
}

func (o *Order) BeforeSave(tx *gorm.DB) (err error) {
	o.TriggerEvent()

	return nil
}

func (o *Order) TriggerEvent() {
	member := o.Member()
	payload_message, _ := json.Marshal(o.ToJSON())

	mq_client.EnqueueEvent("private", member.UID, "order", payload_message)
}

func (o *Order) IsOpen() bool {
	return o.Status == types.StatusOpen || o.Status == types.StatusPartiallyFilled
}

func (o *Order) OutcomeCurrency() string {
	market := o.Market()

	if o.Side == types.SideBuy {
		return market.QuoteUnit
	}

	return market.BaseUnit
}

func (o *Order) IncomeCurrency() string {
	market := o.Market()

	if o.Side == types.SideBuy {
		return market.BaseUnit
	}

	return market.QuoteUnit
}

func (o *Order) FilledQuantity() decimal.Decimal {
	return o.Amount.Sub(o.Remaining)
}

func (o *Order) AvgPrice() decimal.Decimal {
	filled := o.FilledQuantity()
	if filled.IsZero() || o.Cost.IsZero() {
		return decimal.Zero
	}

	return o.Market().round_price(o.Cost.Div(filled))
}

// ToMatchingAttributes converts the stored row into the engine's order
// shape, shifting decimals into scaled integers once at this boundary.
func (o *Order) ToMatchingAttributes() *matching.Order {
	market := o.Market()

	return &matching.Order{
		ID:        o.ID,
		UUID:      o.UUID,
		MemberID:  o.MemberID,
		Symbol:    o.MarketID,
		BaseUnit:  market.BaseUnit,
		QuoteUnit: market.QuoteUnit,
		Side:      o.Side,
		Type:      o.OrdType,
		Price:     fixedpoint.FromDecimal(o.Price.Decimal),
		Amount:    fixedpoint.FromDecimal(o.Amount),
		FeeRate:   fixedpoint.FromDecimal(o.FeeRate),
		Remaining: fixedpoint.FromDecimal(o.Remaining),
		Cost:      fixedpoint.FromDecimal(o.Cost),
		Fee:       fixedpoint.FromDecimal(o.Fee),
		FeeTotal:  fixedpoint.FromDecimal(o.FeeTotal),
		Locked:    fixedpoint.FromDecimal(o.Locked),
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

// ApplyEngineState writes the engine's mutable fields back onto the row.
func (o *Order) ApplyEngineState(eo *matching.Order) {
	o.Remaining = eo.Remaining.ToDecimal()
	o.Cost = eo.Cost.ToDecimal()
	o.Fee = eo.Fee.ToDecimal()
	o.Locked = eo.Locked.ToDecimal()
	o.Status = eo.Status
}

func (o *Order) ToJSON() entities.OrderEntity {
	var price decimal.NullDecimal
	if o.OrdType == types.TypeLimit {
		price = o.Price
	}

	return entities.OrderEntity{
		ID:              o.ID,
		UUID:            o.UUID,
		Market:          o.MarketID,
		Side:            o.Side,
		OrdType:         o.OrdType,
		Price:           price,
		AvgPrice:        o.AvgPrice(),
		Status:          o.Status,
		OriginAmount:    o.Amount,
		RemainingAmount: o.Remaining,
		ExecutedAmount:  o.FilledQuantity(),
		FeeRate:         o.FeeRate,
		TradesCount:     o.TradesCount,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
