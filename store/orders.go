package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/models"
	"github.com/zenithex/zenex/types"
)

// OrderStore persists orders and trades. The engine owns the in-memory
// state; this layer only mirrors it into Postgres and keeps the trade
// tape append-only.
type OrderStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

var openStatuses = []types.OrderStatus{types.StatusOpen, types.StatusPartiallyFilled}

func (s *OrderStore) PersistOrder(ctx context.Context, o *matching.Order) error {
	row := &models.Order{
		ID:           o.ID,
		UUID:         o.UUID,
		MemberID:     o.MemberID,
		MarketID:     o.Symbol,
		Side:         o.Side,
		OrdType:      o.Type,
		Amount:       o.Amount.ToDecimal(),
		Remaining:    o.Remaining.ToDecimal(),
		FeeRate:      o.FeeRate.ToDecimal(),
		FeeTotal:     o.FeeTotal.ToDecimal(),
		Cost:         o.Cost.ToDecimal(),
		Fee:          o.Fee.ToDecimal(),
		Locked:       o.Locked.ToDecimal(),
		OriginLocked: o.Locked.ToDecimal(),
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}

	if o.Type == types.TypeLimit {
		row.Price = decimal.NullDecimal{Decimal: o.Price.ToDecimal(), Valid: true}
	}

	// Save updates the row the API layer already created and inserts a
	// fresh one otherwise.
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}

	o.ID = row.ID

	return nil
}

// UpdateOrderFill writes the post-fill order state and, when called for
// the taker side, appends the trade row and mirrors it into influx.
func (s *OrderStore) UpdateOrderFill(ctx context.Context, o *matching.Order, trade *matching.Trade) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row *models.Order

		result := tx.Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: "orders"},
		}).Where("id = ?", o.ID).First(&row)
		if result.Error != nil {
			return result.Error
		}

		row.ApplyEngineState(o)
		row.TradesCount += 1

		if err := tx.Save(row).Error; err != nil {
			return err
		}

		if o.ID != trade.TakerOrderID {
			return nil
		}

		trade_row := &models.Trade{
			Price:        trade.Price.ToDecimal(),
			Amount:       trade.Quantity.ToDecimal(),
			Total:        trade.Total.ToDecimal(),
			MakerOrderID: trade.MakerOrderID,
			TakerOrderID: trade.TakerOrderID,
			MarketID:     trade.Symbol,
			MakerID:      trade.MakerID,
			TakerID:      trade.TakerID,
			MakerFee:     trade.MakerFee.ToDecimal(),
			TakerFee:     trade.TakerFee.ToDecimal(),
			TakerType:    trade.TakerType,
			Sequence:     trade.Sequence,
			CreatedAt:    trade.CreatedAt,
		}

		if err := tx.Create(trade_row).Error; err != nil {
			return err
		}

		trade_row.WriteToInflux()

		return nil
	})
}

func (s *OrderStore) MarkCanceled(ctx context.Context, o *matching.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row *models.Order

		result := tx.Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: "orders"},
		}).Where("id = ?", o.ID).First(&row)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return matching.NewError(matching.KindOrderNotFound, o.ID, result.Error)
		}
		if result.Error != nil {
			return result.Error
		}

		row.ApplyEngineState(o)

		return tx.Save(row).Error
	})
}

func (s *OrderStore) OpenOrdersBySymbol(ctx context.Context, symbol string) ([]*matching.Order, error) {
	var rows []*models.Order

	result := s.db.WithContext(ctx).
		Where("market_id = ? AND status IN ?", symbol, openStatuses).
		Order("id asc").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return toMatchingOrders(rows), nil
}

func (s *OrderStore) OpenOrdersByMember(ctx context.Context, memberID int64) ([]*matching.Order, error) {
	var rows []*models.Order

	result := s.db.WithContext(ctx).
		Where("member_id = ? AND status IN ?", memberID, openStatuses).
		Order("id asc").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return toMatchingOrders(rows), nil
}

func (s *OrderStore) FindOrder(ctx context.Context, memberID, orderID int64) (*matching.Order, error) {
	var row *models.Order

	result := s.db.WithContext(ctx).Where("id = ? AND member_id = ?", orderID, memberID).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return row.ToMatchingAttributes(), nil
}

func toMatchingOrders(rows []*models.Order) []*matching.Order {
	orders := make([]*matching.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.ToMatchingAttributes())
	}

	return orders
}
