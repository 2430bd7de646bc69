package market_controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/controllers/auth"
	"github.com/zenithex/zenex/controllers/entities"
	"github.com/zenithex/zenex/controllers/helpers"
	"github.com/zenithex/zenex/controllers/queries"
	"github.com/zenithex/zenex/models"
	"github.com/zenithex/zenex/types"
)

func GetTrades(c *fiber.Ctx) error {
	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_session"},
		})
	}

	params := new(queries.TradeFilters)
	if err := c.QueryParser(params); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	if len(params.OrderBy) == 0 {
		params.OrderBy = types.OrderByDesc
	}

	if params.Limit == 0 {
		params.Limit = 100
	}

	if params.Page == 0 {
		params.Page = 1
	}

	tx := config.DataBase.Order("id "+params.OrderBy).Where("maker_id = ? OR taker_id = ?", CurrentUser.ID, CurrentUser.ID)

	if len(params.Market) > 0 {
		tx = tx.Where("market_id = ?", params.Market)
	}

	var trades []*models.Trade
	tx.Offset(params.Page*params.Limit - params.Limit).Limit(params.Limit).Find(&trades)

	trades_json := make([]entities.TradeEntity, 0, len(trades))
	for _, trade := range trades {
		trades_json = append(trades_json, trade.ToJSON(CurrentUser))
	}

	return c.Status(200).JSON(trades_json)
}
