package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zenithex/zenex/controllers"
	"github.com/zenithex/zenex/controllers/market_controllers"
	"github.com/zenithex/zenex/routes/middlewares"
)

func SetupRouter() *fiber.App {
	app := fiber.New()

	app.Get("/api/v2/public/timestamp", controllers.GetTimestamp)
	app.Get("/api/v2/public/markets", controllers.GetMarkets)
	app.Get("/api/v2/public/markets/:market/depth", controllers.GetDepth)
	app.Get("/api/v2/public/markets/:market/tickers", controllers.GetTicker)

	market := app.Group("/api/v2/market", middlewares.Authenticate)
	market.Get("/accounts", controllers.GetAccounts)
	market.Get("/orders", market_controllers.GetOrders)
	market.Get("/orders/:id", market_controllers.GetOrderByID)
	market.Post("/orders", market_controllers.CreateOrder)
	market.Delete("/orders/:id", market_controllers.CancelOrderByID)
	market.Delete("/orders", market_controllers.CancelAllOrders)
	market.Get("/trades", market_controllers.GetTrades)

	return app
}
