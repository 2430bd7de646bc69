package matching

import (
	"time"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/types"
)

// Trade is the immutable record of one match event. It is created once
// per fill, appended to storage and published, never mutated. The price
// is always the resting (maker) order's price.
type Trade struct {
	Symbol       string            `json:"symbol"`
	Price        fixedpoint.Amount `json:"price"`
	Quantity     fixedpoint.Amount `json:"quantity"`
	Total        fixedpoint.Amount `json:"total"`
	MakerOrderID int64             `json:"maker_order_id"`
	TakerOrderID int64             `json:"taker_order_id"`
	MakerID      int64             `json:"maker_id"`
	TakerID      int64             `json:"taker_id"`
	MakerFee     fixedpoint.Amount `json:"maker_fee"`
	TakerFee     fixedpoint.Amount `json:"taker_fee"`
	TakerType    types.TakerType   `json:"taker_type"`

	// Sequence is the per-symbol fill counter; consumers deduplicate
	// events by order id + fill sequence.
	Sequence  uint64    `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
}
