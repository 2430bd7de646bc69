package models

import "time"

type CurrencyType = string

var (
	TypeCoin CurrencyType = "coin"
	TypeFiat CurrencyType = "fiat"
)

type Currency struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      *string   `json:"name"`
	Type      string    `json:"type" gorm:"default:coin"`
	Precision int16     `json:"precision"`
	Visible   bool      `json:"visible"`
	Position  int32     `json:"position" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
