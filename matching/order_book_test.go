package matching

import (
	"testing"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/types"
)

const symbol = "BTC/USDT"

var nextTestID int64

func limitOrder(t *testing.T, side types.OrderSide, price, amount string) *Order {
	t.Helper()

	p, err := fixedpoint.FromString(price)
	if err != nil {
		t.Fatal(err)
	}
	a, err := fixedpoint.FromString(amount)
	if err != nil {
		t.Fatal(err)
	}

	o, err := NewOrder(1, symbol, "BTC", "USDT", side, types.TypeLimit, p, a, fixedpoint.Zero)
	if err != nil {
		t.Fatal(err)
	}

	nextTestID++
	o.ID = nextTestID

	return o
}

func TestOrderBookBestBidAsk(t *testing.T) {
	ob := NewOrderBook(symbol)

	if _, ok := ob.BestBid(); ok {
		t.Error("empty book should have no best bid")
	}
	if _, ok := ob.BestAsk(); ok {
		t.Error("empty book should have no best ask")
	}

	ob.Insert(limitOrder(t, types.SideBuy, "99", "1"))
	ob.Insert(limitOrder(t, types.SideBuy, "101", "1"))
	ob.Insert(limitOrder(t, types.SideBuy, "100", "1"))
	ob.Insert(limitOrder(t, types.SideSell, "105", "1"))
	ob.Insert(limitOrder(t, types.SideSell, "103", "1"))

	bid, _ := ob.BestBid()
	if bid.String() != "101" {
		t.Errorf("best bid = %s, want 101", bid)
	}

	ask, _ := ob.BestAsk()
	if ask.String() != "103" {
		t.Errorf("best ask = %s, want 103", ask)
	}
}

func TestOrderBookFIFOWithinLevel(t *testing.T) {
	ob := NewOrderBook(symbol)

	first := limitOrder(t, types.SideSell, "100", "1")
	second := limitOrder(t, types.SideSell, "100", "1")
	ob.Insert(first)
	ob.Insert(second)

	taker := limitOrder(t, types.SideBuy, "100", "1")
	best := ob.BestMatchable(taker)
	if best == nil || best.ID != first.ID {
		t.Fatalf("expected earlier-inserted ask %d first, got %+v", first.ID, best)
	}

	if first.Sequence >= second.Sequence {
		t.Errorf("sequence must be monotonic: %d >= %d", first.Sequence, second.Sequence)
	}
}

func TestOrderBookBestMatchableRespectsLimit(t *testing.T) {
	ob := NewOrderBook(symbol)
	ob.Insert(limitOrder(t, types.SideSell, "105", "1"))

	taker := limitOrder(t, types.SideBuy, "100", "1")
	if best := ob.BestMatchable(taker); best != nil {
		t.Errorf("bid at 100 must not cross ask at 105, got order %d", best.ID)
	}

	crossing := limitOrder(t, types.SideBuy, "105", "1")
	if best := ob.BestMatchable(crossing); best == nil {
		t.Error("bid at 105 must cross ask at 105")
	}
}

func TestOrderBookRemove(t *testing.T) {
	ob := NewOrderBook(symbol)

	o := limitOrder(t, types.SideBuy, "100", "2")
	ob.Insert(o)

	if removed := ob.Remove(o.ID); removed == nil || removed.ID != o.ID {
		t.Fatal("expected to remove the inserted order")
	}
	if ob.Get(o.ID) != nil {
		t.Error("removed order still indexed")
	}
	if removed := ob.Remove(o.ID); removed != nil {
		t.Error("second remove must be a no-op")
	}
	if ob.Size(types.SideBuy) != 0 {
		t.Errorf("expected empty bid side, got %d", ob.Size(types.SideBuy))
	}

	// The price level itself must be gone, not just emptied.
	if _, ok := ob.BestBid(); ok {
		t.Error("empty level left behind after removal")
	}
}

func TestOrderBookNeverRestsFilledOrders(t *testing.T) {
	ob := NewOrderBook(symbol)

	o := limitOrder(t, types.SideBuy, "100", "2")
	o.Remaining = fixedpoint.Zero
	ob.Insert(o)

	if ob.Size(types.SideBuy) != 0 {
		t.Error("order with zero remaining must not rest in the book")
	}
}

func TestOrderBookRequiredFunds(t *testing.T) {
	ob := NewOrderBook(symbol)
	ob.Insert(limitOrder(t, types.SideSell, "100", "2"))
	ob.Insert(limitOrder(t, types.SideSell, "110", "2"))

	// Market buy of 3: 2 @ 100 + 1 @ 110 = 310 quote.
	required, ok := ob.RequiredFunds(types.SideBuy, fixedpoint.New(3))
	if !ok {
		t.Fatal("expected enough liquidity")
	}
	if required.String() != "310" {
		t.Errorf("required = %s, want 310", required)
	}

	if _, ok := ob.RequiredFunds(types.SideBuy, fixedpoint.New(5)); ok {
		t.Error("expected insufficient liquidity for quantity 5")
	}
}

func TestOrderBookDepthSnapshot(t *testing.T) {
	ob := NewOrderBook(symbol)
	ob.Insert(limitOrder(t, types.SideBuy, "100", "1"))
	ob.Insert(limitOrder(t, types.SideBuy, "100", "2"))
	ob.Insert(limitOrder(t, types.SideBuy, "99", "1"))
	ob.Insert(limitOrder(t, types.SideSell, "101", "4"))

	depth := ob.DepthSnapshot(10)

	if len(depth.Bids) != 2 || len(depth.Asks) != 1 {
		t.Fatalf("depth levels: %d bids, %d asks", len(depth.Bids), len(depth.Asks))
	}
	if depth.Bids[0][0].String() != "100" || depth.Bids[0][1].String() != "3" {
		t.Errorf("best bid level = %s * %s, want 100 * 3", depth.Bids[0][0], depth.Bids[0][1])
	}
	if depth.Asks[0][0].String() != "101" {
		t.Errorf("best ask level price = %s, want 101", depth.Asks[0][0])
	}
}
