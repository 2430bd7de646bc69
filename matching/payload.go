package matching

import "github.com/zenithex/zenex/types"

// PayloadMessage is the envelope the API publishes to the engine worker.
type PayloadMessage struct {
	Action   types.PayloadAction `json:"action"`
	Order    *Order              `json:"order,omitempty"`
	MemberID int64               `json:"member_id,omitempty"`
	OrderID  int64               `json:"order_id,omitempty"`
	Symbol   string              `json:"symbol,omitempty"`
}
