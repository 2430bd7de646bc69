package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/controllers/helpers"
	"github.com/zenithex/zenex/controllers/queries"
	"github.com/zenithex/zenex/models"
	"github.com/zenithex/zenex/mq_client"
	"github.com/zenithex/zenex/types"
)

func GetTimestamp(c *fiber.Ctx) error {
	c.Status(200).JSON(time.Now())

	return nil
}

func GetMarkets(c *fiber.Ctx) error {
	return c.Status(200).JSON(models.EnabledMarkets())
}

// GetTicker serves the 24h rolling summary the ticker cron job caches
// in redis. A market with no trades yet renders as a zeroed ticker.
func GetTicker(c *fiber.Ctx) error {
	marketID := c.Params("market")

	var market *models.Market
	if result := config.DataBase.First(&market, "symbol = ?", marketID); errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"public.market.doesnt_exist"},
		})
	}

	ticker := types.Ticker{
		Open:   decimal.Zero,
		High:   decimal.Zero,
		Low:    decimal.Zero,
		Last:   decimal.Zero,
		Volume: decimal.Zero,
		Amount: decimal.Zero,
	}

	if err := config.Redis.GetKey(mq_client.TickerCacheKey(market.Symbol), &ticker); err != nil {
		config.Logger.Errorf("Failed to fetch %s ticker, Error: %v", market.Symbol, err)
	}

	return c.Status(200).JSON(ticker)
}

// GetDepth serves the latest aggregated book snapshot the engine cached
// in redis. A missing snapshot renders as an empty book, not an error.
func GetDepth(c *fiber.Ctx) error {
	var errs = new(helpers.Errors)

	marketID := c.Params("market")
	params := new(queries.DepthQuery)
	if err := c.QueryParser(params); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	helpers.Validate(params, errs)

	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	var market *models.Market
	if result := config.DataBase.First(&market, "symbol = ?", marketID); errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"public.market.doesnt_exist"},
		})
	}

	if params.Limit == 0 {
		params.Limit = 100
	}

	depth := types.Depth{
		Asks: [][]decimal.Decimal{},
		Bids: [][]decimal.Decimal{},
	}

	if err := config.Redis.GetKey(mq_client.DepthCacheKey(market.Symbol), &depth); err != nil {
		config.Logger.Errorf("Failed to fetch %s depth, Error: %v", market.Symbol, err)

		return c.Status(200).JSON(depth)
	}

	if len(depth.Asks) > params.Limit {
		depth.Asks = depth.Asks[:params.Limit]
	}
	if len(depth.Bids) > params.Limit {
		depth.Bids = depth.Bids[:params.Limit]
	}

	return c.Status(200).JSON(depth)
}
