package matching

import (
	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/types"
)

// PriceLevel holds the resting orders of one side at one price, in
// strict FIFO order by book sequence number.
type PriceLevel struct {
	Side   types.OrderSide
	Price  fixedpoint.Amount
	Orders []*Order
}

type PriceLevelKey struct {
	Side  types.OrderSide
	Price fixedpoint.Amount
}

func NewPriceLevel(side types.OrderSide, price fixedpoint.Amount) *PriceLevel {
	return &PriceLevel{
		Side:   side,
		Price:  price,
		Orders: make([]*Order, 0),
	}
}

func (p *PriceLevel) Key() *PriceLevelKey {
	return &PriceLevelKey{
		Side:  p.Side,
		Price: p.Price,
	}
}

// Add appends an order. Sequence numbers are assigned monotonically by
// the book, so appending preserves time priority.
func (p *PriceLevel) Add(order *Order) {
	for _, o := range p.Orders {
		if o.ID == order.ID {
			return
		}
	}

	p.Orders = append(p.Orders, order)
}

// Top returns the oldest resting order, or nil when the level is empty.
func (p *PriceLevel) Top() *Order {
	if p.Empty() {
		return nil
	}

	return p.Orders[0]
}

func (p *PriceLevel) Empty() bool {
	return len(p.Orders) == 0
}

func (p *PriceLevel) Size() int {
	return len(p.Orders)
}

// Total is the unfilled quantity resting at this price.
func (p *PriceLevel) Total() fixedpoint.Amount {
	total := fixedpoint.Zero

	for _, order := range p.Orders {
		total = total.Add(order.Remaining)
	}

	return total
}

func (p *PriceLevel) Remove(id int64) *Order {
	for index, o := range p.Orders {
		if o.ID == id {
			p.Orders = append(p.Orders[:index], p.Orders[index+1:]...)
			return o
		}
	}

	return nil
}
