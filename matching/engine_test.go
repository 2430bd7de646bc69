package matching

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/types"
)

type fakeLedger struct {
	mu         sync.Mutex
	balances   map[string]fixedpoint.Amount
	locked     map[string]fixedpoint.Amount
	failUnlock map[int64]bool
	failSettle bool
	lockErr    error
	fills      []*FillSettlement
	revenue    fixedpoint.Amount
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances:   make(map[string]fixedpoint.Amount),
		locked:     make(map[string]fixedpoint.Amount),
		failUnlock: make(map[int64]bool),
	}
}

func acct(memberID int64, currency string) string {
	return fmt.Sprintf("%d:%s", memberID, currency)
}

func (l *fakeLedger) deposit(memberID int64, currency, amount string) {
	a, _ := fixedpoint.FromString(amount)
	l.balances[acct(memberID, currency)] = l.balances[acct(memberID, currency)].Add(a)
}

func (l *fakeLedger) LockFunds(_ context.Context, memberID int64, currency string, amount fixedpoint.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lockErr != nil {
		return l.lockErr
	}

	key := acct(memberID, currency)
	if l.balances[key].LessThan(amount) {
		return NewError(KindInsufficientBalance, 0, nil)
	}

	l.balances[key] = l.balances[key].Sub(amount)
	l.locked[key] = l.locked[key].Add(amount)

	return nil
}

func (l *fakeLedger) UnlockAndCredit(_ context.Context, memberID int64, currency string, amount fixedpoint.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failUnlock[memberID] {
		return fmt.Errorf("ledger unavailable")
	}

	key := acct(memberID, currency)
	l.locked[key] = l.locked[key].Sub(amount)
	l.balances[key] = l.balances[key].Add(amount)

	return nil
}

func (l *fakeLedger) SettleFill(_ context.Context, fill *FillSettlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failSettle {
		return fmt.Errorf("ledger unavailable")
	}

	for _, p := range []FillParty{fill.Maker, fill.Taker} {
		spendKey := acct(p.MemberID, p.SpendCurrency)
		l.locked[spendKey] = l.locked[spendKey].Sub(p.Spend.Add(p.Refund))
		l.balances[spendKey] = l.balances[spendKey].Add(p.Refund)

		proceedsKey := acct(p.MemberID, p.ProceedsCurrency)
		l.balances[proceedsKey] = l.balances[proceedsKey].Add(p.Proceeds)
	}

	l.revenue = l.revenue.Add(fill.Revenue)
	l.fills = append(l.fills, fill)

	return nil
}

type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*Order
	trades []*Trade
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[int64]*Order)}
}

func (s *fakeStore) PersistOrder(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == 0 {
		s.nextID++
		o.ID = s.nextID
	}
	s.orders[o.ID] = o

	return nil
}

func (s *fakeStore) UpdateOrderFill(_ context.Context, o *Order, trade *Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = o
	if trade.TakerOrderID == o.ID {
		s.trades = append(s.trades, trade)
	}

	return nil
}

func (s *fakeStore) MarkCanceled(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = o

	return nil
}

func (s *fakeStore) OpenOrdersBySymbol(_ context.Context, symbol string) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]*Order, 0)
	for id := int64(1); id <= s.nextID; id++ {
		if o, ok := s.orders[id]; ok && o.Symbol == symbol && o.IsOpen() {
			orders = append(orders, o)
		}
	}

	return orders, nil
}

func (s *fakeStore) OpenOrdersByMember(_ context.Context, memberID int64) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]*Order, 0)
	for id := int64(1); id <= s.nextID; id++ {
		if o, ok := s.orders[id]; ok && o.MemberID == memberID && o.IsOpen() {
			orders = append(orders, o)
		}
	}

	return orders, nil
}

func (s *fakeStore) FindOrder(_ context.Context, memberID, orderID int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.MemberID != memberID {
		return nil, nil
	}

	return o, nil
}

type fakeEvents struct {
	mu      sync.Mutex
	orders  int
	trades  []*Trade
	cancels []*Order
}

func (f *fakeEvents) PublishOrder(*Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders++
	return nil
}

func (f *fakeEvents) PublishTrade(trade *Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades = append(f.trades, trade)
	return nil
}

func (f *fakeEvents) PublishCancel(o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, o)
	return nil
}

func (f *fakeEvents) PublishDepth(string, types.Depth) error {
	return nil
}

type fakeOutbox struct {
	mu      sync.Mutex
	entries []*ReconcileEntry
}

func (f *fakeOutbox) Enqueue(entry *ReconcileEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

type testRig struct {
	engine *Engine
	ledger *fakeLedger
	store  *fakeStore
	events *fakeEvents
	outbox *fakeOutbox
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	rig := &testRig{
		ledger: newFakeLedger(),
		store:  newFakeStore(),
		events: &fakeEvents{},
		outbox: &fakeOutbox{},
	}
	rig.engine = NewEngine(Options{
		Ledger: rig.ledger,
		Store:  rig.store,
		Events: rig.events,
		Outbox: rig.outbox,
		Logger: logrus.NewEntry(logger),
	})

	return rig
}

func (r *testRig) submit(t *testing.T, memberID int64, side types.OrderSide, price, amount, feeRate string) (*Order, []*Trade) {
	t.Helper()

	p, err := fixedpoint.FromString(price)
	if err != nil {
		t.Fatal(err)
	}
	a, err := fixedpoint.FromString(amount)
	if err != nil {
		t.Fatal(err)
	}
	f, err := fixedpoint.FromString(feeRate)
	if err != nil {
		t.Fatal(err)
	}

	o, err := NewOrder(memberID, symbol, "BTC", "USDT", side, types.TypeLimit, p, a, f)
	if err != nil {
		t.Fatal(err)
	}

	trades, err := r.engine.Submit(context.Background(), o)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	return o, trades
}

// Scenario: BUY 10 @ 100 resting, incoming SELL 4 @ 100. One fill of
// qty 4 at 100; buy remaining 6, status PARTIALLY_FILLED.
func TestEnginePartialFill(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "2000")
	rig.ledger.deposit(2, "BTC", "10")

	buy, _ := rig.submit(t, 1, types.SideBuy, "100", "10", "0")
	_, trades := rig.submit(t, 2, types.SideSell, "100", "4", "0")

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Quantity.String() != "4" || trades[0].Price.String() != "100" {
		t.Errorf("trade = %s @ %s, want 4 @ 100", trades[0].Quantity, trades[0].Price)
	}
	if buy.Remaining.String() != "6" {
		t.Errorf("buy remaining = %s, want 6", buy.Remaining)
	}
	if buy.Status != types.StatusPartiallyFilled {
		t.Errorf("buy status = %s, want partially_filled", buy.Status)
	}

	// Conservation: filled + remaining == amount.
	if !buy.FilledQuantity().Add(buy.Remaining).Equal(buy.Amount) {
		t.Error("filled + remaining != amount")
	}

	// Balances: seller got 400 quote, buyer got 4 base.
	if got := rig.ledger.balances[acct(2, "USDT")]; got.String() != "400" {
		t.Errorf("seller quote balance = %s, want 400", got)
	}
	if got := rig.ledger.balances[acct(1, "BTC")]; got.String() != "4" {
		t.Errorf("buyer base balance = %s, want 4", got)
	}
}

// Two resting asks at the same price: a crossing bid must match the
// earlier-inserted ask first.
func TestEnginePriceTimePriority(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "BTC", "10")
	rig.ledger.deposit(2, "BTC", "10")
	rig.ledger.deposit(3, "USDT", "1000")

	first, _ := rig.submit(t, 1, types.SideSell, "100", "5", "0")
	second, _ := rig.submit(t, 2, types.SideSell, "100", "5", "0")

	_, trades := rig.submit(t, 3, types.SideBuy, "100", "5", "0")

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].MakerOrderID != first.ID {
		t.Errorf("matched maker %d, want earlier ask %d", trades[0].MakerOrderID, first.ID)
	}
	if !second.IsOpen() || second.Remaining.String() != "5" {
		t.Error("later ask must be untouched")
	}
}

// The matched price is always the resting order's price, even when the
// taker's limit is more aggressive.
func TestEngineMakerPriceRule(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "BTC", "10")
	rig.ledger.deposit(2, "USDT", "2000")

	rig.submit(t, 1, types.SideSell, "100", "5", "0")
	buy, trades := rig.submit(t, 2, types.SideBuy, "120", "5", "0")

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Price.String() != "100" {
		t.Errorf("trade price = %s, want maker price 100", trades[0].Price)
	}

	if buy.Status != types.StatusFilled {
		t.Errorf("buy status = %s, want filled", buy.Status)
	}

	// The aggressive buyer locked 120/unit but paid 100/unit; the
	// price improvement must be back in the free balance.
	if got := rig.ledger.balances[acct(2, "USDT")]; got.String() != "1500" {
		t.Errorf("buyer quote balance = %s, want 1500 (2000 - 5*100)", got)
	}
	if got := rig.ledger.locked[acct(2, "USDT")]; !got.IsZero() {
		t.Errorf("buyer still has %s locked after full fill", got)
	}
}

// Scenario: buy amount=10 price=100 feeRate=0.001 (total fee 1), filled
// 6, then cancelled. The refund is the remaining cost 400 plus the
// proportional remaining fee 0.4.
func TestEngineCancelRefundsRemainingLock(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "1001")
	rig.ledger.deposit(2, "BTC", "10")

	buy, _ := rig.submit(t, 1, types.SideBuy, "100", "10", "0.001")
	rig.submit(t, 2, types.SideSell, "100", "6", "0")

	if err := rig.engine.Cancel(context.Background(), 1, buy.ID, symbol); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if buy.Status != types.StatusCanceled {
		t.Errorf("status = %s, want canceled", buy.Status)
	}

	// Locked 1001 total; 6 filled consumed 600 cost + 0.6 fee; refund
	// 400.4; free balance = 1001 - 1001 + 400.4 = 400.4.
	if got := rig.ledger.balances[acct(1, "USDT")]; got.String() != "400.4" {
		t.Errorf("buyer quote balance = %s, want 400.4", got)
	}
	if got := rig.ledger.locked[acct(1, "USDT")]; !got.IsZero() {
		t.Errorf("buyer still has %s locked after cancel", got)
	}
}

// An unfilled sell cancels to a refund of exactly its base quantity.
func TestEngineCancelSellRefundsBase(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "BTC", "5")

	sell, _ := rig.submit(t, 1, types.SideSell, "100", "5", "0.001")

	if err := rig.engine.Cancel(context.Background(), 1, sell.ID, symbol); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := rig.ledger.balances[acct(1, "BTC")]; got.String() != "5" {
		t.Errorf("base balance = %s, want 5", got)
	}
	if got := rig.ledger.locked[acct(1, "BTC")]; !got.IsZero() {
		t.Errorf("still locked: %s", got)
	}
}

func TestEngineCancelIdempotency(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "1000")
	rig.ledger.deposit(2, "BTC", "10")

	buy, _ := rig.submit(t, 1, types.SideBuy, "100", "10", "0")

	if err := rig.engine.Cancel(context.Background(), 1, buy.ID, symbol); err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	err := rig.engine.Cancel(context.Background(), 1, buy.ID, symbol)
	if !IsKind(err, KindOrderNotOpen) {
		t.Errorf("second cancel: got %v, want OrderNotOpen", err)
	}

	// The second attempt must not have issued another refund.
	if got := rig.ledger.balances[acct(1, "USDT")]; got.String() != "1000" {
		t.Errorf("balance = %s, want 1000", got)
	}

	// A fully filled order can never be cancelled.
	filled, _ := rig.submit(t, 1, types.SideBuy, "100", "2", "0")
	rig.submit(t, 2, types.SideSell, "100", "2", "0")

	err = rig.engine.Cancel(context.Background(), 1, filled.ID, symbol)
	if !IsKind(err, KindNothingToCancel) {
		t.Errorf("cancel of filled order: got %v, want NothingToCancel", err)
	}
}

func TestEngineCancelUnknownOrder(t *testing.T) {
	rig := newTestRig(t)

	err := rig.engine.Cancel(context.Background(), 1, 42, symbol)
	if !IsKind(err, KindOrderNotFound) {
		t.Errorf("got %v, want OrderNotFound", err)
	}
}

// Scenario: cancel-all over three open orders where the second fails
// its ledger unlock. Orders 1 and 3 are cancelled and refunded; only
// order 2 reports a failure.
func TestEngineCancelAllContinuesOnFailure(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "300")
	rig.ledger.deposit(2, "USDT", "100")

	o1, _ := rig.submit(t, 1, types.SideBuy, "100", "1", "0")
	o2, _ := rig.submit(t, 2, types.SideBuy, "100", "1", "0")
	o3, _ := rig.submit(t, 1, types.SideBuy, "99", "1", "0")

	rig.ledger.failUnlock[2] = true

	// Member 1 first: both cancel cleanly.
	results, err := rig.engine.CancelAll(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Error != "" {
			t.Errorf("order %d failed: %s", r.OrderID, r.Error)
		}
	}

	results, err = rig.engine.CancelAll(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Error == "" {
		t.Fatalf("expected the failing order to report an error, got %+v", results)
	}

	if o1.Status != types.StatusCanceled || o3.Status != types.StatusCanceled {
		t.Error("healthy orders must still be cancelled")
	}
	if o2.Status != types.StatusCanceled {
		t.Error("the failing order is cancelled too; only its refund is deferred")
	}
	if got := rig.ledger.balances[acct(1, "USDT")]; got.String() != "300" {
		t.Errorf("member 1 balance = %s, want 300", got)
	}

	// The failed refund is parked for reconciliation.
	found := false
	for _, entry := range rig.outbox.entries {
		if entry.Kind == ReconcileRefund && entry.MemberID == 2 {
			found = true
		}
	}
	if !found {
		t.Error("expected a refund reconciliation entry for member 2")
	}
}

func TestEngineInsufficientBalance(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "50")

	p, _ := fixedpoint.FromString("100")
	a, _ := fixedpoint.FromString("1")
	o, err := NewOrder(1, symbol, "BTC", "USDT", types.SideBuy, types.TypeLimit, p, a, fixedpoint.Zero)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rig.engine.Submit(context.Background(), o)
	if !IsKind(err, KindInsufficientBalance) {
		t.Errorf("got %v, want InsufficientBalance", err)
	}

	// No book mutation on a validation failure.
	if rig.engine.Book(symbol).Size(types.SideBuy) != 0 {
		t.Error("rejected order must not rest in the book")
	}
}

func TestEngineInvalidOrders(t *testing.T) {
	zero := fixedpoint.Zero
	neg := fixedpoint.New(-1)
	one := fixedpoint.New(1)

	if _, err := NewOrder(1, symbol, "BTC", "USDT", types.SideBuy, types.TypeLimit, zero, one, zero); !IsKind(err, KindInvalidAmount) {
		t.Errorf("zero price: got %v", err)
	}
	if _, err := NewOrder(1, symbol, "BTC", "USDT", types.SideBuy, types.TypeLimit, one, zero, zero); !IsKind(err, KindInvalidAmount) {
		t.Errorf("zero amount: got %v", err)
	}
	if _, err := NewOrder(1, symbol, "BTC", "USDT", types.SideSell, types.TypeLimit, one, neg, zero); !IsKind(err, KindInvalidAmount) {
		t.Errorf("negative amount: got %v", err)
	}
	if _, err := NewOrder(1, symbol, "BTC", "USDT", "sideways", types.TypeLimit, one, one, zero); !IsKind(err, KindInvalidAmount) {
		t.Errorf("bad side: got %v", err)
	}
	if _, err := NewOrder(1, symbol, "BTC", "USDT", types.SideBuy, types.TypeMarket, one, one, zero); !IsKind(err, KindInvalidAmount) {
		t.Errorf("market order with price: got %v", err)
	}
}

// A market buy sweeps the book at resting prices; when the book cannot
// cover the quantity it is rejected upfront.
func TestEngineMarketOrder(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "BTC", "10")
	rig.ledger.deposit(2, "BTC", "10")
	rig.ledger.deposit(3, "USDT", "1000")

	rig.submit(t, 1, types.SideSell, "100", "2", "0")
	rig.submit(t, 2, types.SideSell, "110", "2", "0")

	a, _ := fixedpoint.FromString("3")
	mkt, err := NewOrder(3, symbol, "BTC", "USDT", types.SideBuy, types.TypeMarket, fixedpoint.Zero, a, fixedpoint.Zero)
	if err != nil {
		t.Fatal(err)
	}

	trades, err := rig.engine.Submit(context.Background(), mkt)
	if err != nil {
		t.Fatal(err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if mkt.Status != types.StatusFilled {
		t.Errorf("status = %s, want filled", mkt.Status)
	}

	// 2*100 + 1*110 = 310 spent; nothing left locked.
	if got := rig.ledger.balances[acct(3, "USDT")]; got.String() != "690" {
		t.Errorf("quote balance = %s, want 690", got)
	}
	if got := rig.ledger.locked[acct(3, "USDT")]; !got.IsZero() {
		t.Errorf("still locked: %s", got)
	}
	if got := rig.ledger.balances[acct(3, "BTC")]; got.String() != "3" {
		t.Errorf("base balance = %s, want 3", got)
	}

	// Not enough depth left for another 5.
	big, _ := NewOrder(3, symbol, "BTC", "USDT", types.SideBuy, types.TypeMarket, fixedpoint.Zero, fixedpoint.New(5), fixedpoint.Zero)
	if _, err := rig.engine.Submit(context.Background(), big); !IsKind(err, KindInsufficientLiquidity) {
		t.Errorf("got %v, want InsufficientLiquidity", err)
	}
}

// Fees flow to revenue and the buyer's fee is charged against the
// pre-locked fee reserve, proportional to the filled share.
func TestEngineFeeAccounting(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "1001")
	rig.ledger.deposit(2, "BTC", "10")

	buy, _ := rig.submit(t, 1, types.SideBuy, "100", "10", "0.001")
	sell, _ := rig.submit(t, 2, types.SideSell, "100", "10", "0.002")

	if buy.Fee.String() != "1" {
		t.Errorf("buyer cumulative fee = %s, want 1", buy.Fee)
	}
	if sell.Fee.String() != "2" {
		t.Errorf("seller cumulative fee = %s, want 2", sell.Fee)
	}
	if rig.ledger.revenue.String() != "3" {
		t.Errorf("revenue = %s, want 3", rig.ledger.revenue)
	}

	// Seller proceeds are net of fee.
	if got := rig.ledger.balances[acct(2, "USDT")]; got.String() != "998" {
		t.Errorf("seller proceeds = %s, want 998", got)
	}
}

// A ledger failure mid-match must not be swallowed: the book stays
// consistent and the fill is parked in the reconciliation outbox.
func TestEngineSettlementFailureGoesToOutbox(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "BTC", "10")
	rig.ledger.deposit(2, "USDT", "1000")

	rig.submit(t, 1, types.SideSell, "100", "5", "0")

	rig.ledger.failSettle = true
	buy, trades := rig.submit(t, 2, types.SideBuy, "100", "5", "0")

	if len(trades) != 1 {
		t.Fatalf("expected the match to proceed, got %d trades", len(trades))
	}
	if buy.Status != types.StatusFilled {
		t.Errorf("status = %s, want filled", buy.Status)
	}

	found := false
	for _, entry := range rig.outbox.entries {
		if entry.Kind == ReconcileFill && entry.Fill != nil {
			found = true
		}
	}
	if !found {
		t.Error("expected a fill reconciliation entry")
	}
}

// A dust-sized buy whose pre-locked fee reserve does not divide evenly
// across fills: the recomputed per-fill fee can exceed the lock release
// delta by a raw unit. The charged fee must follow the release so the
// spend never exceeds what the fill frees, the refund is never negative
// and the lock drains to exactly zero.
func TestEngineDustFillFeeConservation(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "0.000000000000000027")
	rig.ledger.deposit(2, "BTC", "0.000000000000000025")

	// Lock = 25 raw cost + 2 raw fee reserve.
	buy, _ := rig.submit(t, 1, types.SideBuy, "1", "0.000000000000000025", "0.1")

	rig.submit(t, 2, types.SideSell, "1", "0.000000000000000015", "0")
	rig.submit(t, 2, types.SideSell, "1", "0.000000000000000010", "0")

	if buy.Status != types.StatusFilled {
		t.Fatalf("status = %s, want filled", buy.Status)
	}

	for _, fill := range rig.ledger.fills {
		for _, p := range []FillParty{fill.Maker, fill.Taker} {
			if p.Refund.IsNegative() {
				t.Errorf("order %d refund = %s, must never be negative", p.OrderID, p.Refund)
			}
		}
	}

	// The second fill's rate-derived fee (1 raw) exceeds its remaining
	// fee share (0 raw); only the covered part may be charged.
	if buy.Fee.String() != "0.000000000000000001" {
		t.Errorf("buyer cumulative fee = %s, want 1 raw unit", buy.Fee)
	}
	if rig.ledger.revenue.String() != "0.000000000000000001" {
		t.Errorf("revenue = %s, want 1 raw unit", rig.ledger.revenue)
	}

	// Lock conservation: 27 raw locked, 26 raw spent, 1 raw back.
	if !buy.Locked.IsZero() {
		t.Errorf("engine lock = %s, want 0", buy.Locked)
	}
	if got := rig.ledger.locked[acct(1, "USDT")]; !got.IsZero() {
		t.Errorf("ledger lock = %s, want 0", got)
	}
	if got := rig.ledger.balances[acct(1, "USDT")]; got.String() != "0.000000000000000001" {
		t.Errorf("buyer quote balance = %s, want 1 raw unit", got)
	}
	if got := rig.ledger.balances[acct(1, "BTC")]; got.String() != "0.000000000000000025" {
		t.Errorf("buyer base balance = %s, want 25 raw units", got)
	}
}

// Only a missed deadline maps to the timeout kind; other collaborator
// failures surface as a plain external error.
func TestEngineExternalErrorKinds(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "200")

	p, _ := fixedpoint.FromString("100")
	a, _ := fixedpoint.FromString("1")

	rig.ledger.lockErr = fmt.Errorf("connection refused")
	o, err := NewOrder(1, symbol, "BTC", "USDT", types.SideBuy, types.TypeLimit, p, a, fixedpoint.Zero)
	if err != nil {
		t.Fatal(err)
	}
	_, err = rig.engine.Submit(context.Background(), o)
	if !IsKind(err, KindExternalError) {
		t.Errorf("plain failure: got %v, want ExternalError", err)
	}

	rig.ledger.lockErr = context.DeadlineExceeded
	o2, err := NewOrder(1, symbol, "BTC", "USDT", types.SideBuy, types.TypeLimit, p, a, fixedpoint.Zero)
	if err != nil {
		t.Fatal(err)
	}
	_, err = rig.engine.Submit(context.Background(), o2)
	if !IsKind(err, KindExternalTimeout) {
		t.Errorf("missed deadline: got %v, want ExternalTimeout", err)
	}
}

// Reloading a book must not reset the shard: downstream consumers
// deduplicate by order id plus fill sequence, so the sequence stays
// monotonic across reloads.
func TestEngineReloadKeepsTradeSequence(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "BTC", "10")
	rig.ledger.deposit(2, "USDT", "1000")

	rig.submit(t, 1, types.SideSell, "100", "1", "0")
	_, trades := rig.submit(t, 2, types.SideBuy, "100", "1", "0")
	if len(trades) != 1 || trades[0].Sequence != 1 {
		t.Fatalf("expected first trade with sequence 1, got %+v", trades)
	}

	if err := rig.engine.Reload(context.Background(), symbol); err != nil {
		t.Fatal(err)
	}

	rig.submit(t, 1, types.SideSell, "100", "1", "0")
	_, trades = rig.submit(t, 2, types.SideBuy, "100", "1", "0")
	if len(trades) != 1 || trades[0].Sequence != 2 {
		t.Fatalf("expected sequence 2 after reload, got %+v", trades)
	}
}

func TestEngineReloadRebuildsBook(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.deposit(1, "USDT", "1000")

	o, _ := rig.submit(t, 1, types.SideBuy, "100", "2", "0")

	if err := rig.engine.Reload(context.Background(), symbol); err != nil {
		t.Fatal(err)
	}

	book := rig.engine.Book(symbol)
	if book.Get(o.ID) == nil {
		t.Error("open order missing after reload")
	}
	if book.Size(types.SideBuy) != 1 {
		t.Errorf("bid side size = %d, want 1", book.Size(types.SideBuy))
	}
}
