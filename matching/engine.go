package matching

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zenithex/zenex/fixedpoint"
	"github.com/zenithex/zenex/settlement"
	"github.com/zenithex/zenex/types"
)

const defaultCallTimeout = 5 * time.Second

// depthLimit caps published depth snapshots.
const depthLimit = 300

// Engine coordinates one order book per traded symbol. It is an
// explicitly constructed service: collaborators are injected, lifecycle
// is owned by process bootstrap, and handlers receive the instance.
//
// Each symbol's book is mutated only inside that symbol's critical
// section; books of different symbols match fully in parallel. The
// external ledger and store calls made during matching run under a
// bounded deadline so a stalled dependency cannot hold the symbol lock
// indefinitely; failures after a book mutation go to the reconciliation
// outbox instead of being swallowed.
type Engine struct {
	ledger      LedgerGateway
	store       OrderStore
	events      EventPublisher
	outbox      ReconcileOutbox
	logger      *logrus.Entry
	callTimeout time.Duration

	mu     sync.RWMutex
	shards map[string]*shard
}

type shard struct {
	sync.Mutex
	book     *OrderBook
	tradeSeq uint64
}

type Options struct {
	Ledger      LedgerGateway
	Store       OrderStore
	Events      EventPublisher
	Outbox      ReconcileOutbox
	Logger      *logrus.Entry
	CallTimeout time.Duration
}

func NewEngine(opts Options) *Engine {
	if opts.CallTimeout == 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Engine{
		ledger:      opts.Ledger,
		store:       opts.Store,
		events:      opts.Events,
		outbox:      opts.Outbox,
		logger:      opts.Logger,
		callTimeout: opts.CallTimeout,
		shards:      make(map[string]*shard),
	}
}

// Start initializes a book per symbol and reloads resting orders from
// the store, oldest first, without re-settling them.
func (e *Engine) Start(ctx context.Context, symbols []string) error {
	for _, symbol := range symbols {
		if err := e.Reload(ctx, symbol); err != nil {
			return err
		}
	}

	return nil
}

// Reload (re)builds the in-memory book of one symbol from storage. The
// rebuild runs under the shard's lock so a concurrent Submit or Cancel
// can never mutate the book being replaced.
func (e *Engine) Reload(ctx context.Context, symbol string) error {
	sh := e.shard(symbol)
	sh.Lock()
	defer sh.Unlock()

	cctx, cancel := e.bounded(ctx)
	defer cancel()

	orders, err := e.store.OpenOrdersBySymbol(cctx, symbol)
	if err != nil {
		return e.external(0, err)
	}

	book := NewOrderBook(symbol)
	for _, o := range orders {
		o.Sequence = 0
		book.Insert(o)
	}
	sh.book = book

	e.logger.Infof("%v engine reloaded with %d resting orders", symbol, len(orders))

	return nil
}

func (e *Engine) shard(symbol string) *shard {
	e.mu.RLock()
	sh, ok := e.shards[symbol]
	e.mu.RUnlock()

	if ok {
		return sh
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if sh, ok = e.shards[symbol]; !ok {
		sh = &shard{book: NewOrderBook(symbol)}
		e.shards[symbol] = sh
	}

	return sh
}

// Book exposes a symbol's order book for depth queries. Callers must
// not mutate it.
func (e *Engine) Book(symbol string) *OrderBook {
	return e.shard(symbol).book
}

func (e *Engine) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithTimeout(ctx, e.callTimeout)
}

// external wraps a collaborator failure into the error taxonomy. Only a
// missed deadline maps to the timeout kind; other collaborator failures
// keep their own kind or surface as a plain external error.
func (e *Engine) external(orderID int64, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindExternalTimeout, orderID, err)
	}

	var me *Error
	if errors.As(err, &me) {
		return err
	}

	return newError(KindExternalError, orderID, err)
}

// Submit locks the taker's funds, runs the matching loop under the
// symbol lock and either rests the remainder (limit) or cancels it
// (market). Validation failures surface before any book mutation or
// lock is taken.
func (e *Engine) Submit(ctx context.Context, taker *Order) ([]*Trade, error) {
	if taker == nil || !taker.Amount.IsPositive() || !taker.Remaining.IsPositive() {
		return nil, newError(KindInvalidAmount, 0, nil)
	}
	if taker.Type == types.TypeLimit && !taker.Price.IsPositive() {
		return nil, newError(KindInvalidAmount, 0, nil)
	}

	sh := e.shard(taker.Symbol)
	sh.Lock()
	defer sh.Unlock()

	if taker.Type == types.TypeMarket {
		required, ok := sh.book.RequiredFunds(taker.Side, taker.Amount)
		if !ok {
			return nil, newError(KindInsufficientLiquidity, taker.ID, nil)
		}

		// Market buys pre-lock the fee on top of the estimated cost.
		if taker.Side == types.SideBuy {
			required = required.Add(required.Mul(taker.FeeRate))
		}
		taker.Locked = required
	}

	cctx, cancel := e.bounded(ctx)
	err := e.ledger.LockFunds(cctx, taker.MemberID, taker.OutcomeCurrency(), taker.Locked)
	cancel()
	if err != nil {
		return nil, e.external(taker.ID, err)
	}

	cctx, cancel = e.bounded(ctx)
	err = e.store.PersistOrder(cctx, taker)
	cancel()
	if err != nil {
		// Compensate the lock; the order never existed.
		cctx, cancel = e.bounded(ctx)
		if uerr := e.ledger.UnlockAndCredit(cctx, taker.MemberID, taker.OutcomeCurrency(), taker.Locked); uerr != nil {
			e.logger.Errorf("failed to unlock after persist failure for member %d: %v", taker.MemberID, uerr)
			e.enqueueRefund(taker, taker.Locked)
		}
		cancel()

		return nil, e.external(taker.ID, err)
	}

	trades := e.match(ctx, sh, taker)

	switch {
	case taker.Filled():
		// Marked FILLED inside the loop, never inserted.

	case taker.Type == types.TypeLimit:
		sh.book.Insert(taker)
		e.logger.Debugf("[zenex.orderbook] insert order %d - %s * %s, side %s", taker.ID, taker.Price, taker.Remaining, taker.Side)

	default:
		// Market remainder is immediate-or-cancel.
		e.cancelRemainder(ctx, sh, taker)
	}

	e.publishOrder(taker)
	e.publishDepth(sh.book)

	return trades, nil
}

// match runs the price-time-priority loop: repeatedly take the oldest
// opposing order that crosses, fill at the resting (maker) order's
// price, settle, persist and publish. One incoming order is one atomic
// unit of work from the book's perspective.
func (e *Engine) match(ctx context.Context, sh *shard, taker *Order) []*Trade {
	trades := make([]*Trade, 0)

	for !taker.Filled() {
		maker := sh.book.BestMatchable(taker)
		if maker == nil {
			break
		}

		qty := fixedpoint.Min(taker.Remaining, maker.Remaining)
		trade, fill := e.buildFill(sh, maker, taker, qty)

		makerRelease := maker.release(qty, trade.Total, trade.MakerFee)
		takerRelease := taker.release(qty, trade.Total, trade.TakerFee)

		maker.applyFill(qty, trade.Total, trade.MakerFee, makerRelease)
		taker.applyFill(qty, trade.Total, trade.TakerFee, takerRelease)

		if maker.Filled() {
			sh.book.Remove(maker.ID)
		}
		sh.book.MarketPrice = maker.Price

		e.logger.Debugf("[zenex.orderbook] trade %s %s @ %s (maker %d, taker %d)",
			trade.Symbol, trade.Quantity, trade.Price, maker.ID, taker.ID)

		e.settleFill(ctx, fill)
		e.persistFill(ctx, maker, taker, trade)

		if err := e.events.PublishTrade(trade); err != nil {
			e.logger.Errorf("failed to publish trade %d/%d: %v", trade.MakerOrderID, trade.TakerOrderID, err)
		}
		if maker.Filled() {
			e.publishOrder(maker)
		}

		trades = append(trades, trade)
	}

	return trades
}

// buildFill computes the trade record and the two-sided balance
// mutation for one match. The matched price is always the maker's.
func (e *Engine) buildFill(sh *shard, maker, taker *Order, qty fixedpoint.Amount) (*Trade, *FillSettlement) {
	cost, makerFee := settlement.FillSettlement(qty, maker.Price, maker.FeeRate)
	_, takerFee := settlement.FillSettlement(qty, maker.Price, taker.FeeRate)

	makerParty := e.fillParty(maker, qty, cost, makerFee)
	takerParty := e.fillParty(taker, qty, cost, takerFee)

	sh.tradeSeq++

	trade := &Trade{
		Symbol:       sh.book.Symbol,
		Price:        maker.Price,
		Quantity:     qty,
		Total:        cost,
		MakerOrderID: maker.ID,
		TakerOrderID: taker.ID,
		MakerID:      maker.MemberID,
		TakerID:      taker.MemberID,
		MakerFee:     makerParty.Fee,
		TakerFee:     takerParty.Fee,
		TakerType:    taker.Side,
		Sequence:     sh.tradeSeq,
		CreatedAt:    time.Now(),
	}

	fill := &FillSettlement{
		Symbol:      sh.book.Symbol,
		FeeCurrency: maker.QuoteUnit,
		Maker:       makerParty,
		Taker:       takerParty,
		Revenue:     makerParty.Fee.Add(takerParty.Fee),
		Sequence:    sh.tradeSeq,
	}

	return trade, fill
}

// fillParty derives the balance movements for one order in a fill of
// qty at cost. Buyers spend cost+fee from locked quote and receive the
// base quantity; any lock released beyond the spend (price improvement)
// is refunded to the free balance. Sellers spend the base quantity and
// receive cost minus fee in quote.
func (e *Engine) fillParty(o *Order, qty, cost, fee fixedpoint.Amount) FillParty {
	party := FillParty{
		OrderID:          o.ID,
		MemberID:         o.MemberID,
		Side:             o.Side,
		SpendCurrency:    o.OutcomeCurrency(),
		ProceedsCurrency: o.IncomeCurrency(),
	}

	if o.Side == types.SideBuy {
		release := o.release(qty, cost, fee)
		spend := cost.Add(fee)

		// The release is a delta of the locked-for function while the
		// fee truncates from the rate independently; the two can
		// disagree by a raw unit. The shortfall comes out of the fee so
		// the spend never exceeds the release: the release always
		// covers the cost, so the fee absorbs it without going
		// negative and the refund stays non-negative.
		if release.LessThan(spend) {
			fee = fee.Sub(spend.Sub(release))
			spend = release
		}

		party.Fee = fee
		party.Spend = spend
		party.Refund = release.Sub(spend)
		party.Proceeds = qty
	} else {
		party.Fee = fee
		party.Spend = qty
		party.Refund = fixedpoint.Zero
		party.Proceeds = cost.Sub(fee)
	}

	return party
}

func (e *Engine) settleFill(ctx context.Context, fill *FillSettlement) {
	cctx, cancel := e.bounded(ctx)
	defer cancel()

	if err := e.ledger.SettleFill(cctx, fill); err != nil {
		e.logger.Errorf("fill settlement failed for orders %d/%d: %v", fill.Maker.OrderID, fill.Taker.OrderID, err)

		if oerr := e.outbox.Enqueue(&ReconcileEntry{Kind: ReconcileFill, OrderID: fill.Taker.OrderID, Fill: fill}); oerr != nil {
			e.logger.Errorf("failed to enqueue fill reconciliation: %v", oerr)
		}
	}
}

func (e *Engine) persistFill(ctx context.Context, maker, taker *Order, trade *Trade) {
	for _, o := range []*Order{maker, taker} {
		cctx, cancel := e.bounded(ctx)
		err := e.store.UpdateOrderFill(cctx, o, trade)
		cancel()

		if err != nil {
			e.logger.Errorf("failed to persist fill for order %d: %v", o.ID, err)

			if oerr := e.outbox.Enqueue(&ReconcileEntry{Kind: ReconcilePersist, OrderID: o.ID, MemberID: o.MemberID, Order: o}); oerr != nil {
				e.logger.Errorf("failed to enqueue persist reconciliation: %v", oerr)
			}
		}
	}
}

// Cancel removes an order from the book and refunds what is still
// locked for its unfilled tail. Cancelling a fully filled order fails
// with NothingToCancel and never issues a refund; a repeated cancel
// fails with OrderNotOpen.
func (e *Engine) Cancel(ctx context.Context, memberID, orderID int64, symbol string) error {
	sh := e.shard(symbol)
	sh.Lock()
	defer sh.Unlock()

	o := sh.book.Get(orderID)
	if o == nil {
		cctx, cancel := e.bounded(ctx)
		stored, err := e.store.FindOrder(cctx, memberID, orderID)
		cancel()

		if err != nil || stored == nil {
			return newError(KindOrderNotFound, orderID, err)
		}

		o = stored
	}

	if o.MemberID != memberID {
		return newError(KindOrderNotFound, orderID, nil)
	}
	if o.Status == types.StatusCanceled {
		return newError(KindOrderNotOpen, orderID, nil)
	}
	if o.Remaining.IsZero() {
		return newError(KindNothingToCancel, orderID, nil)
	}

	// From here the only contract of book removal is "no longer
	// matchable"; removal of an absent order is a no-op.
	sh.book.Remove(orderID)

	refund := o.Locked
	if o.Type == types.TypeLimit {
		computed, err := settlement.CancelRefund(o.Side, o.Remaining, o.Amount, o.Price, o.FeeTotal)
		if err != nil {
			return newError(KindNothingToCancel, orderID, err)
		}
		refund = computed
	}

	o.Status = types.StatusCanceled
	o.Locked = o.Locked.Sub(refund)

	cctx, cancel := e.bounded(ctx)
	err := e.ledger.UnlockAndCredit(cctx, o.MemberID, o.OutcomeCurrency(), refund)
	cancel()
	if err != nil {
		e.enqueueRefund(o, refund)
		e.markCanceled(ctx, o)

		return e.external(orderID, err)
	}

	e.markCanceled(ctx, o)

	if perr := e.events.PublishCancel(o); perr != nil {
		e.logger.Errorf("failed to publish cancel for order %d: %v", o.ID, perr)
	}
	e.publishDepth(sh.book)

	return nil
}

// cancelRemainder cancels the unfilled tail of a market order under the
// already-held shard lock, refunding whatever lock is left.
func (e *Engine) cancelRemainder(ctx context.Context, sh *shard, o *Order) {
	refund := o.Locked
	o.Status = types.StatusCanceled
	o.Locked = fixedpoint.Zero

	if refund.IsPositive() {
		cctx, cancel := e.bounded(ctx)
		err := e.ledger.UnlockAndCredit(cctx, o.MemberID, o.OutcomeCurrency(), refund)
		cancel()
		if err != nil {
			e.logger.Errorf("failed to refund market remainder for order %d: %v", o.ID, err)
			e.enqueueRefund(o, refund)
		}
	}

	e.markCanceled(ctx, o)

	if perr := e.events.PublishCancel(o); perr != nil {
		e.logger.Errorf("failed to publish cancel for order %d: %v", o.ID, perr)
	}
}

// CancelResult reports the outcome of one order inside a cancel-all.
type CancelResult struct {
	OrderID int64  `json:"order_id"`
	Symbol  string `json:"symbol"`
	Error   string `json:"error,omitempty"`
}

// CancelAll cancels every open order of a member. A failure on one
// order never aborts the rest; the caller gets a per-order report.
func (e *Engine) CancelAll(ctx context.Context, memberID int64) ([]CancelResult, error) {
	cctx, cancel := e.bounded(ctx)
	orders, err := e.store.OpenOrdersByMember(cctx, memberID)
	cancel()
	if err != nil {
		return nil, e.external(0, err)
	}

	results := make([]CancelResult, 0, len(orders))
	for _, o := range orders {
		result := CancelResult{OrderID: o.ID, Symbol: o.Symbol}

		if cerr := e.Cancel(ctx, memberID, o.ID, o.Symbol); cerr != nil {
			result.Error = cerr.Error()
		}

		results = append(results, result)
	}

	return results, nil
}

func (e *Engine) enqueueRefund(o *Order, refund fixedpoint.Amount) {
	entry := &ReconcileEntry{
		Kind:     ReconcileRefund,
		OrderID:  o.ID,
		MemberID: o.MemberID,
		Currency: o.OutcomeCurrency(),
		Amount:   refund,
	}

	if err := e.outbox.Enqueue(entry); err != nil {
		e.logger.Errorf("failed to enqueue refund reconciliation for order %d: %v", o.ID, err)
	}
}

func (e *Engine) markCanceled(ctx context.Context, o *Order) {
	cctx, cancel := e.bounded(ctx)
	defer cancel()

	if err := e.store.MarkCanceled(cctx, o); err != nil {
		e.logger.Errorf("failed to persist cancellation of order %d: %v", o.ID, err)

		if oerr := e.outbox.Enqueue(&ReconcileEntry{Kind: ReconcilePersist, OrderID: o.ID, MemberID: o.MemberID, Order: o}); oerr != nil {
			e.logger.Errorf("failed to enqueue persist reconciliation: %v", oerr)
		}
	}
}

func (e *Engine) publishOrder(o *Order) {
	if err := e.events.PublishOrder(o); err != nil {
		e.logger.Errorf("failed to publish order %d: %v", o.ID, err)
	}
}

func (e *Engine) publishDepth(book *OrderBook) {
	if err := e.events.PublishDepth(book.Symbol, book.DepthSnapshot(depthLimit)); err != nil {
		e.logger.Errorf("failed to publish depth for %s: %v", book.Symbol, err)
	}
}
