package queries

import (
	"github.com/zenithex/zenex/controllers/helpers"
	"github.com/zenithex/zenex/types"
)

type TradeFilters struct {
	Market  string `query:"market"`
	Limit   int    `query:"limit" validate:"uint"`
	Page    int    `query:"page" validate:"uint"`
	OrderBy string `query:"order_by" validate:"ValidateOrderBy"`
}

func (t TradeFilters) ValidateOrderBy(val string) bool {
	return val == "" || val == types.OrderByAsc || val == types.OrderByDesc
}

func (t TradeFilters) Messages() map[string]string {
	return helpers.ValidateMessage("market.trade")
}
