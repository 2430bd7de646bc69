package market_controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/controllers/auth"
	"github.com/zenithex/zenex/controllers/entities"
	"github.com/zenithex/zenex/controllers/helpers"
	"github.com/zenithex/zenex/controllers/queries"
	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/models"
	"github.com/zenithex/zenex/types"
)

func CreateOrder(c *fiber.Ctx) error {
	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_session"},
		})
	}

	errs := new(helpers.Errors)
	payload := new(helpers.CreateOrderParams)

	if err := c.BodyParser(payload); err != nil {
		c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})

		return err
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	order := payload.CreateOrder(CurrentUser, errs)

	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	return c.Status(201).JSON(order.ToJSON())
}

func GetOrders(c *fiber.Ctx) error {
	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_session"},
		})
	}

	var orders []models.Order
	orders_json := make([]entities.OrderEntity, 0)

	params := new(queries.OrderFilters)
	if err := c.QueryParser(params); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	errs := new(helpers.Errors)
	helpers.Validate(params, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	if len(params.OrderBy) == 0 {
		params.OrderBy = types.OrderByDesc
	}

	tx := config.DataBase.Order("updated_at "+params.OrderBy).Where("member_id = ?", CurrentUser.ID)

	if len(params.Market) > 0 {
		tx = tx.Where("market_id = ?", params.Market)
	}

	if len(params.Status) > 0 {
		tx = tx.Where("status = ?", params.Status)
	}

	if params.TimeFrom > 0 {
		time_from := time.Unix(params.TimeFrom, 0)
		tx = tx.Where("created_at >= ?", time_from)
	}

	if params.TimeTo > 0 {
		time_to := time.Unix(params.TimeTo, 0)
		tx = tx.Where("created_at < ?", time_to)
	}

	if params.Limit == 0 {
		params.Limit = 100
	}

	if params.Page == 0 {
		params.Page = 1
	}

	tx = tx.Offset(params.Page*params.Limit - params.Limit).Limit(params.Limit)

	tx.Find(&orders)

	for _, order := range orders {
		orders_json = append(orders_json, order.ToJSON())
	}

	return c.Status(200).JSON(orders_json)
}

func GetOrderByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"market.order.invalid_id"},
		})
	}

	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_session"},
		})
	}

	var order *models.Order

	result := config.DataBase.Where("id = ? AND member_id = ?", id, CurrentUser.ID).First(&order)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{"record.not_found"},
		})
	}

	return c.Status(200).JSON(order.ToJSON())
}

func CancelOrderByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"market.order.invalid_id"},
		})
	}
	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_session"},
		})
	}

	var order *models.Order

	result := config.DataBase.Where("id = ? AND member_id = ?", id, CurrentUser.ID).First(&order)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{"record.not_found"},
		})
	}

	if !order.IsOpen() {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{string(matching.KindOrderNotOpen)},
		})
	}

	if err := helpers.PublishMatchingAction(&matching.PayloadMessage{
		Action:   types.ActionCancel,
		MemberID: CurrentUser.ID,
		OrderID:  order.ID,
		Symbol:   order.MarketID,
	}); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.internal_error"},
		})
	}

	return c.Status(200).JSON(order.ToJSON())
}

func CancelAllOrders(c *fiber.Ctx) error {
	var orders []*models.Order
	params := new(queries.CancelAllOrdersParams)

	if err := c.BodyParser(params); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_session"},
		})
	}

	errs := new(helpers.Errors)
	helpers.Validate(params, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	tx := config.DataBase.Where("member_id = ? AND status IN ?", CurrentUser.ID,
		[]types.OrderStatus{types.StatusOpen, types.StatusPartiallyFilled})

	if len(params.Market) > 0 {
		tx = tx.Where("market_id = ?", params.Market)
	}

	if len(params.Side) > 0 {
		tx = tx.Where("side = ?", params.Side)
	}

	tx.Find(&orders)

	// Filtered cancels go order by order; a bare cancel-all is one
	// engine action.
	if len(params.Market) == 0 && len(params.Side) == 0 {
		if err := helpers.PublishMatchingAction(&matching.PayloadMessage{
			Action:   types.ActionCancelAll,
			MemberID: CurrentUser.ID,
		}); err != nil {
			return c.Status(500).JSON(helpers.Errors{
				Errors: []string{"server.internal_error"},
			})
		}
	} else {
		for _, order := range orders {
			if err := helpers.PublishMatchingAction(&matching.PayloadMessage{
				Action:   types.ActionCancel,
				MemberID: CurrentUser.ID,
				OrderID:  order.ID,
				Symbol:   order.MarketID,
			}); err != nil {
				return c.Status(500).JSON(helpers.Errors{
					Errors: []string{"server.internal_error"},
				})
			}
		}
	}

	ordersJSON := make([]entities.OrderEntity, 0, len(orders))

	for _, order := range orders {
		ordersJSON = append(ordersJSON, order.ToJSON())
	}

	return c.Status(201).JSON(ordersJSON)
}
