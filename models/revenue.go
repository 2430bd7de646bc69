package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/config"
)

// Revenue records the platform's fee income per trade.
type Revenue struct {
	ID            int64           `json:"id"`
	Code          int32           `json:"code"`
	CurrencyID    string          `json:"currency_id"`
	MemberID      int64           `json:"member_id"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   int64           `json:"reference_id"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func GetRevenueCode(currencyID string) int32 {
	var currency Currency
	config.DataBase.First(&currency, "id = ?", currencyID)

	var operations_account OperationsAccount
	config.DataBase.Where("type = ? AND currency_type = ?", TypeRevenue, currency.Type).Find(&operations_account)

	return operations_account.Code
}

func RevenueCredit(amount decimal.Decimal, currencyID string, reference Reference, member_id int64) {
	code := GetRevenueCode(currencyID)

	revenue := Revenue{
		Code:          code,
		CurrencyID:    currencyID,
		ReferenceType: reference.Type,
		ReferenceID:   reference.ID,
		Credit:        amount,
		MemberID:      member_id,
	}

	config.DataBase.Create(&revenue)
}
