package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/models"
)

// Gateway applies the engine's balance mutations to account rows. Every
// call is one database transaction; account rows are taken with row
// locks so concurrent symbols never interleave on the same balance.
type Gateway struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) account(tx *gorm.DB, memberID int64, currency string) (*models.Account, error) {
	var account *models.Account

	result := tx.Clauses(clause.Locking{
		Strength: "UPDATE",
		Table:    clause.Table{Name: "accounts"},
	}).Where("member_id = ? AND currency_id = ?", memberID, currency).First(&account)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, matching.NewError(matching.KindWalletNotFound, 0, result.Error)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return account, nil
}

func (g *Gateway) LockFunds(ctx context.Context, memberID int64, currency string, amount fixedpoint.Amount) error {
	value := amount.ToDecimal()

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := g.account(tx, memberID, currency)
		if err != nil {
			return err
		}

		if value.GreaterThan(account.Balance) {
			return matching.NewError(matching.KindInsufficientBalance, 0, nil)
		}

		return account.LockFunds(tx, value)
	})
}

func (g *Gateway) UnlockAndCredit(ctx context.Context, memberID int64, currency string, amount fixedpoint.Amount) error {
	value := amount.ToDecimal()

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := g.account(tx, memberID, currency)
		if err != nil {
			return err
		}

		return account.UnlockFunds(tx, value)
	})
}

// SettleFill moves both parties' balances for one match inside a single
// transaction: the spend leaves the locked balance, the refund goes back
// to the free balance, the proceeds are credited in the income currency
// and the collected fees are booked as platform revenue.
func (g *Gateway) SettleFill(ctx context.Context, fill *matching.FillSettlement) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, party := range []matching.FillParty{fill.Maker, fill.Taker} {
			if err := g.strike(tx, fill, party); err != nil {
				return err
			}
		}

		if fill.Revenue.IsPositive() {
			models.RevenueCredit(
				fill.Revenue.ToDecimal(),
				fill.FeeCurrency,
				models.Reference{ID: int64(fill.Sequence), Type: "Trade"},
				0,
			)
		}

		return nil
	})
}

func (g *Gateway) strike(tx *gorm.DB, fill *matching.FillSettlement, party matching.FillParty) error {
	spend := party.Spend.ToDecimal()
	refund := party.Refund.ToDecimal()
	proceeds := party.Proceeds.ToDecimal()

	outcome, err := g.account(tx, party.MemberID, party.SpendCurrency)
	if err != nil {
		return err
	}

	if err := outcome.UnlockAndSubFunds(tx, spend); err != nil {
		return err
	}
	if refund.IsPositive() {
		if err := outcome.UnlockFunds(tx, refund); err != nil {
			return err
		}
	}

	income, err := g.account(tx, party.MemberID, party.ProceedsCurrency)
	if err != nil {
		return err
	}

	if proceeds.IsPositive() {
		if err := income.PlusFunds(tx, proceeds); err != nil {
			return err
		}
	}

	reference := models.Reference{ID: party.OrderID, Type: "Order"}
	models.LiabilityDebit(spend, party.SpendCurrency, reference, "locked", party.MemberID)
	if proceeds.IsPositive() {
		models.LiabilityCredit(proceeds, party.ProceedsCurrency, reference, "main", party.MemberID)
	}

	return nil
}
