package queries

import (
	"github.com/zenithex/zenex/controllers/helpers"
	"github.com/zenithex/zenex/types"
)

type OrderFilters struct {
	Market   string            `query:"market"`
	Status   types.OrderStatus `query:"status" validate:"ValidateStatus"`
	Limit    int               `query:"limit" validate:"uint"`
	Page     int               `query:"page" validate:"uint"`
	TimeFrom int64             `query:"time_from" validate:"uint"`
	TimeTo   int64             `query:"time_to" validate:"uint"`
	OrderBy  string            `query:"order_by" validate:"ValidateOrderBy"`
}

func (t OrderFilters) ValidateStatus(val types.OrderStatus) bool {
	switch val {
	case "", types.StatusOpen, types.StatusPartiallyFilled, types.StatusFilled, types.StatusCanceled:
		return true
	}

	return false
}

func (t OrderFilters) ValidateOrderBy(val string) bool {
	return val == "" || val == types.OrderByAsc || val == types.OrderByDesc
}

func (t OrderFilters) Messages() map[string]string {
	return helpers.ValidateMessage("market.order")
}

type CancelAllOrdersParams struct {
	Market string          `json:"market" form:"market"`
	Side   types.OrderSide `json:"side" form:"side" validate:"ValidateSide"`
}

func (t CancelAllOrdersParams) ValidateSide(val types.OrderSide) bool {
	return val == "" || val == types.SideBuy || val == types.SideSell
}

func (t CancelAllOrdersParams) Messages() map[string]string {
	return helpers.ValidateMessage("market.order")
}
