package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/config"
)

// Liability is the double-entry audit trail of member funds: every lock,
// unlock and settlement movement leaves a credit/debit pair keyed to the
// triggering order or trade.
type Liability struct {
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

func GetOperationsCode(currencyID string, kind string) int32 {
	var currency Currency
	config.DataBase.First(&currency, "id = ?", currencyID)

	var operations_account OperationsAccount
	config.DataBase.Where("type = ? AND kind = ? AND currency_type = ?", TypeLiability, kind, currency.Type).Find(&operations_account)

	return operations_account.Code
}

func LiabilityCredit(amount decimal.Decimal, currencyID string, reference Reference, kind string, member_id int64) {
	code := GetOperationsCode(currencyID, kind)

	liability := Liability{
		Code:          code,
		CurrencyID:    currencyID,
		ReferenceType: reference.Type,
		ReferenceID:   reference.ID,
		Credit:        amount,
		MemberID:      member_id,
	}

	config.DataBase.Create(&liability)
}

func LiabilityDebit(amount decimal.Decimal, currencyID string, reference Reference, kind string, member_id int64) {
	code := GetOperationsCode(currencyID, kind)

	liability := Liability{
		Code:          code,
		CurrencyID:    currencyID,
		ReferenceType: reference.Type,
		ReferenceID:   reference.ID,
		Debit:         amount,
		MemberID:      member_id,
	}

	config.DataBase.Create(&liability)
}

func LiabilityTranfer(amount decimal.Decimal, currencyID string, reference Reference, from_kind, to_kind string, member_id int64) {
	LiabilityCredit(amount, currencyID, reference, from_kind, member_id)
	LiabilityDebit(amount, currencyID, reference, to_kind, member_id)
}
