package helpers

import (
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/models"
	"github.com/zenithex/zenex/types"
)

type CreateOrderParams struct {
	Market  string              `json:"market" form:"market" validate:"required"`
	Side    types.OrderSide     `json:"side" form:"side" validate:"required|ValidateSide"`
	OrdType types.OrderType     `json:"ord_type" form:"ord_type" validate:"ValidateOrdType"`
	Price   decimal.NullDecimal `json:"price" form:"price" validate:"ValidatePrice"`
	Amount  decimal.Decimal     `json:"amount" form:"amount" validate:"ValidateAmount"`
}

func (p CreateOrderParams) Messages() map[string]string {
	invalid_message := "market.order.invalid_{field}"

	return validate.MS{
		"required":        invalid_message,
		"ValidateSide":    invalid_message,
		"ValidateOrdType": invalid_message,
		"ValidatePrice":   "market.order.non_positive_price",
		"ValidateAmount":  "market.order.non_positive_amount",
	}
}

func (p CreateOrderParams) ValidatePrice(Price decimal.NullDecimal) bool {
	if Price.Valid {
		return Price.Decimal.IsPositive()
	}

	return true
}

func (p CreateOrderParams) ValidateOrdType(OrdType types.OrderType) bool {
	if OrdType == types.TypeMarket && p.Price.Valid {
		return false
	} else if OrdType == types.TypeLimit && !p.Price.Valid {
		return false
	}

	return true
}

func (p CreateOrderParams) ValidateAmount(Amount decimal.Decimal) bool {
	return Amount.IsPositive()
}

func (p CreateOrderParams) ValidateSide(val types.OrderSide) bool {
	return p.Side == types.SideBuy || p.Side == types.SideSell
}

func (p CreateOrderParams) GetMarket() *models.Market {
	return models.GetMarketBySymbol(p.Market)
}

// BuildOrder validates the parameters against the market rules and
// returns both the engine order and its database row. The fee rate is
// resolved from the member's trading fee group; the single rate applies
// to the order whether it rests or takes.
func (p CreateOrderParams) BuildOrder(member *models.Member, err_src *Errors) (*matching.Order, *models.Order) {
	market := p.GetMarket()
	if market == nil || market.State != models.MarketStateEnabled {
		err_src.Errors = append(err_src.Errors, "market.market.doesnt_exist_or_not_enabled")
		return nil, nil
	}

	if len(p.OrdType) == 0 {
		p.OrdType = types.TypeLimit
	}

	trading_fee := models.TradingFeeFor(member.Group, market.Symbol)
	fee_rate := trading_fee.Taker

	row := &models.Order{
		MemberID:  member.ID,
		MarketID:  market.Symbol,
		Side:      p.Side,
		OrdType:   p.OrdType,
		Price:     p.Price,
		Amount:    p.Amount,
		Remaining: p.Amount,
		FeeRate:   fee_rate,
		Status:    types.StatusOpen,
	}

	Validate(row, err_src)
	if err_src.Size() > 0 {
		return nil, nil
	}

	engine_order, err := matching.NewOrder(
		member.ID,
		market.Symbol,
		market.BaseUnit,
		market.QuoteUnit,
		p.Side,
		p.OrdType,
		fixedpoint.FromDecimal(p.Price.Decimal),
		fixedpoint.FromDecimal(p.Amount),
		fixedpoint.FromDecimal(fee_rate),
	)
	if err != nil {
		err_src.Errors = append(err_src.Errors, string(matching.KindOf(err)))
		return nil, nil
	}

	row.Locked = engine_order.Locked.ToDecimal()
	row.OriginLocked = row.Locked
	row.FeeTotal = engine_order.FeeTotal.ToDecimal()

	return engine_order, row
}

// CreateOrder persists the row and hands the order to the engine via
// the matching subject.
func (p CreateOrderParams) CreateOrder(member *models.Member, err_src *Errors) *models.Order {
	engine_order, row := p.BuildOrder(member, err_src)
	if err_src.Size() > 0 {
		return nil
	}

	if err := config.DataBase.Create(row).Error; err != nil {
		err_src.Errors = append(err_src.Errors, "market.order.invalid_amount_or_price")
		return nil
	}

	engine_order.ID = row.ID
	engine_order.UUID = row.UUID

	if err := PublishMatchingAction(&matching.PayloadMessage{
		Action: types.ActionSubmit,
		Order:  engine_order,
	}); err != nil {
		err_src.Errors = append(err_src.Errors, "server.internal_error")
		return nil
	}

	return row
}
