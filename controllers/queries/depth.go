package queries

import "github.com/zenithex/zenex/controllers/helpers"

type DepthQuery struct {
	Limit int `query:"limit" validate:"uint"`
}

func (t DepthQuery) Messages() map[string]string {
	return helpers.ValidateMessage("public.market_depth")
}
