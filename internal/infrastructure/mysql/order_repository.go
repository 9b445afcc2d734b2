package mysql

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockDeductor removes sold units from inventory.
type StockDeductor interface {
	Deduct(ctx context.Context, productID string, quantity int) error
}

// OrderRepository persists orders in the orders table. Recording a payment
// takes one unit out of stock inside the same transaction.
type OrderRepository struct {
	db    *gorm.DB
	ids   order.IDGenerator
	stock StockDeductor
}

// NewOrderRepository builds a store. stock may be nil when inventory is kept
// elsewhere.
func NewOrderRepository(db *gorm.DB, ids order.IDGenerator, stock StockDeductor) *OrderRepository {
	return &OrderRepository{db: db, ids: ids, stock: stock}
}

// stockError marks a failed deduct so it is not mistaken for a driver error.
type stockError struct{ err error }

func (e stockError) Error() string { return "deduct stock: " + e.err.Error() }
func (e stockError) Unwrap() error { return e.err }

// settle applies the payment transition to a loaded row. changed is false
// when the same transaction was already recorded.
func settle(model *OrderModel, transactionID string, amount int64) (entity *order.Order, changed bool, err error) {
	entity = toDomainOrder(model)
	wasPaid := entity.Status == order.StatusPaid
	if err := entity.RecordPayment(transactionID, amount); err != nil {
		return nil, false, err
	}
	return entity, !wasPaid, nil
}

func (r *OrderRepository) deductSold(ctx context.Context, productID string) error {
	if r.stock == nil {
		return nil
	}
	if err := r.stock.Deduct(ctx, productID, 1); err != nil {
		return stockError{err: err}
	}
	return nil
}

// RecordPaymentForOrder locks the order row, applies the payment transition,
// writes it back and deducts one unit of stock in one transaction. A failed
// deduct rolls the row back to pending.
func (r *OrderRepository) RecordPaymentForOrder(ctx context.Context, orderID, transactionID string, amount int64) outcome.Outcome[order.Order, failure.Integration] {
	var updated *order.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&model).Error; err != nil {
			return err
		}

		entity, changed, err := settle(&model, transactionID, amount)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Model(&OrderModel{}).Where("id = ?", orderID).Updates(map[string]any{
				"transaction_id": entity.TransactionID,
				"status":         string(entity.Status),
				"updated_at":     entity.UpdatedAt,
			}).Error; err != nil {
				return err
			}
			if err := r.deductSold(ctx, entity.ProductID); err != nil {
				return err
			}
		}
		updated = entity
		return nil
	})

	return recordPaymentResult(updated, err)
}

func recordPaymentResult(updated *order.Order, err error) outcome.Outcome[order.Order, failure.Integration] {
	var serr stockError
	switch {
	case err == nil:
		return outcome.Success[order.Order, failure.Integration](*updated)
	case errors.As(err, &serr):
		return outcome.Failure[order.Order, failure.Integration](failure.DatabaseError{Message: "deduct stock", Err: serr.err})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return outcome.Failure[order.Order, failure.Integration](failure.DatabaseError{Message: "record payment", Err: order.ErrNotFound})
	case errors.Is(err, order.ErrAmountMismatch),
		errors.Is(err, order.ErrMissingTransaction),
		errors.Is(err, order.ErrInvalidStateTransition):
		return outcome.Failure[order.Order, failure.Integration](failure.DatabaseError{Message: "record payment", Err: err})
	default:
		return outcome.Failure[order.Order, failure.Integration](classify("record payment", err))
	}
}

// Get loads one order.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, classify("get order", err)
	}
	return toDomainOrder(&model), nil
}
