package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/config"
)

type Market struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	Symbol          string          `json:"symbol"`
	BaseUnit        string          `json:"base_unit"`
	QuoteUnit       string          `json:"quote_unit"`
	AmountPrecision int             `json:"amount_precision"`
	PricePrecision  int             `json:"price_precision"`
	MaxPrice        decimal.Decimal `json:"max_price"`
	MinPrice        decimal.Decimal `json:"min_price"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	State           string          `json:"state"`
	Position        int32           `json:"position"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

const MarketStateEnabled = "enabled"

func GetMarketBySymbol(symbol string) *Market {
	market := &Market{}

	result := config.DataBase.First(market, "symbol = ?", symbol)
	if result.Error != nil {
		return nil
	}

	return market
}

func EnabledMarkets() []*Market {
	markets := make([]*Market, 0)

	config.DataBase.Where("state = ?", MarketStateEnabled).Order("position asc").Find(&markets)

	return markets
}

func (m Market) round_price(val decimal.Decimal) decimal.Decimal {
	return val.Round(int32(m.PricePrecision))
}

func (m Market) round_amount(val decimal.Decimal) decimal.Decimal {
	return val.Round(int32(m.AmountPrecision))
}
