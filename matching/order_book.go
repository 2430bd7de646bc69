package matching

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/types"
)

// OrderBook keeps the resting orders of one symbol: a red-black tree of
// price levels per side, ordered so the best level of either side is the
// tree's rightmost node, plus an id index for O(log n) cancellation.
type OrderBook struct {
	Symbol      string
	Bids        *redblacktree.Tree
	Asks        *redblacktree.Tree
	MarketPrice fixedpoint.Amount

	index    map[int64]*Order
	sequence uint64
}

// levelComparator orders price levels so that Right() is top of book:
// highest price for bids, lowest price for asks.
func levelComparator(a, b interface{}) int {
	this := a.(*PriceLevelKey)
	that := b.(*PriceLevelKey)

	switch {
	case this.Side == types.SideSell && this.Price.LessThan(that.Price):
		return 1

	case this.Side == types.SideSell && this.Price.GreaterThan(that.Price):
		return -1

	case this.Side == types.SideBuy && this.Price.LessThan(that.Price):
		return -1

	case this.Side == types.SideBuy && this.Price.GreaterThan(that.Price):
		return 1

	default:
		return 0
	}
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		Bids:   redblacktree.NewWith(levelComparator),
		Asks:   redblacktree.NewWith(levelComparator),
		index:  make(map[int64]*Order, 1024),
	}
}

func (ob *OrderBook) side(s types.OrderSide) *redblacktree.Tree {
	if s == types.SideBuy {
		return ob.Bids
	}

	return ob.Asks
}

// NextSequence hands out the monotonic insertion counter used for FIFO
// priority within a price level.
func (ob *OrderBook) NextSequence() uint64 {
	ob.sequence++
	return ob.sequence
}

// Insert adds a resting order at its side and price, after existing
// orders at that price. Orders with nothing remaining never rest.
func (ob *OrderBook) Insert(o *Order) {
	if o.Remaining.IsZero() {
		return
	}

	if o.Sequence == 0 {
		o.Sequence = ob.NextSequence()
	}

	tree := ob.side(o.Side)
	pl := NewPriceLevel(o.Side, o.Price)

	if value, found := tree.Get(pl.Key()); found {
		pl = value.(*PriceLevel)
	} else {
		tree.Put(pl.Key(), pl)
	}

	pl.Add(o)
	ob.index[o.ID] = o
}

// Remove takes an order out of the book by id, returning it, or nil if
// the order is not resting (already filled or never inserted).
func (ob *OrderBook) Remove(id int64) *Order {
	o, ok := ob.index[id]
	if !ok {
		return nil
	}

	delete(ob.index, id)

	tree := ob.side(o.Side)
	key := &PriceLevelKey{Side: o.Side, Price: o.Price}

	value, found := tree.Get(key)
	if !found {
		return o
	}

	pl := value.(*PriceLevel)
	pl.Remove(id)

	if pl.Empty() {
		tree.Remove(key)
	}

	return o
}

// Get returns a resting order by id, or nil.
func (ob *OrderBook) Get(id int64) *Order {
	return ob.index[id]
}

func (ob *OrderBook) best(side types.OrderSide) *PriceLevel {
	node := ob.side(side).Right()
	if node == nil {
		return nil
	}

	return node.Value.(*PriceLevel)
}

// BestBid returns the highest resting bid price.
func (ob *OrderBook) BestBid() (fixedpoint.Amount, bool) {
	pl := ob.best(types.SideBuy)
	if pl == nil {
		return fixedpoint.Zero, false
	}

	return pl.Price, true
}

// BestAsk returns the lowest resting ask price.
func (ob *OrderBook) BestAsk() (fixedpoint.Amount, bool) {
	pl := ob.best(types.SideSell)
	if pl == nil {
		return fixedpoint.Zero, false
	}

	return pl.Price, true
}

// BestMatchable returns the oldest opposing order whose price crosses
// the taker's limit, or nil when the book no longer crosses.
func (ob *OrderBook) BestMatchable(taker *Order) *Order {
	pl := ob.best(taker.Side.Opposite())
	if pl == nil {
		return nil
	}

	if !taker.Crosses(pl.Price) {
		return nil
	}

	return pl.Top()
}

// Size returns the number of resting orders on one side.
func (ob *OrderBook) Size(side types.OrderSide) int {
	size := 0

	it := ob.side(side).Iterator()
	for it.Next() {
		size += it.Value().(*PriceLevel).Size()
	}

	return size
}

// RequiredFunds walks the opposing side and returns the quantity
// obtainable and the funds a market order must lock to take the given
// quantity. Returns false when the book lacks the liquidity.
func (ob *OrderBook) RequiredFunds(side types.OrderSide, quantity fixedpoint.Amount) (fixedpoint.Amount, bool) {
	expected := quantity
	required := fixedpoint.Zero

	it := ob.side(side.Opposite()).Iterator()
	it.End()
	for it.Prev() && expected.IsPositive() {
		pl := it.Value().(*PriceLevel)
		v := fixedpoint.Min(pl.Total(), expected)

		if side == types.SideBuy {
			required = required.Add(pl.Price.Mul(v))
		} else {
			required = required.Add(v)
		}

		expected = expected.Sub(v)
	}

	if expected.IsPositive() {
		return fixedpoint.Zero, false
	}

	return required, true
}

// DepthSnapshot aggregates up to limit price levels per side into the
// JSON depth shape, best levels first.
func (ob *OrderBook) DepthSnapshot(limit int) types.Depth {
	depth := types.Depth{
		Asks:     make([][]decimal.Decimal, 0, limit),
		Bids:     make([][]decimal.Decimal, 0, limit),
		Sequence: ob.sequence,
	}

	ait := ob.Asks.Iterator()
	ait.End()
	for i := 0; ait.Prev() && i < limit; i++ {
		pl := ait.Value().(*PriceLevel)
		depth.Asks = append(depth.Asks, []decimal.Decimal{pl.Price.ToDecimal(), pl.Total().ToDecimal()})
	}

	bit := ob.Bids.Iterator()
	bit.End()
	for i := 0; bit.Prev() && i < limit; i++ {
		pl := bit.Value().(*PriceLevel)
		depth.Bids = append(depth.Bids, []decimal.Decimal{pl.Price.ToDecimal(), pl.Total().ToDecimal()})
	}

	return depth
}
