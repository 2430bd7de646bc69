package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/controllers/auth"
	"github.com/zenithex/zenex/controllers/helpers"
	"github.com/zenithex/zenex/models"
)

func GetAccounts(c *fiber.Ctx) error {
	CurrentUser := auth.GetCurrentUser(c)

	if CurrentUser == nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_session"},
		})
	}

	var accounts []models.Account
	config.DataBase.Where(&models.Account{MemberID: CurrentUser.ID}).Find(&accounts)

	accounts_json := make([]models.AccountJSON, 0, len(accounts))
	for _, account := range accounts {
		accounts_json = append(accounts_json, account.ToJSON())
	}

	return c.Status(200).JSON(accounts_json)
}
