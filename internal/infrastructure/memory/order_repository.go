package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
)

// ErrPaymentInProgress is returned while another call is recording a payment
// for the same order.
var ErrPaymentInProgress = errors.New("memory: payment already being recorded")

// StockDeductor removes sold units from inventory.
type StockDeductor interface {
	Deduct(ctx context.Context, productID string, quantity int) error
}

// OrderRepository stores orders in a map. Recording a payment also takes one
// unit out of stock; if that fails the order stays pending. The deduct runs
// without holding mu, so a slow inventory only delays the order being paid.
type OrderRepository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	settling map[string]struct{}
	ids      domain.IDGenerator
	stock    StockDeductor
}

// NewOrderRepository builds a store. stock may be nil when inventory is kept
// elsewhere.
func NewOrderRepository(ids domain.IDGenerator, stock StockDeductor) *OrderRepository {
	if ids == nil {
		panic("memory.NewOrderRepository: nil id generator")
	}
	return &OrderRepository{
		orders:   make(map[string]*domain.Order),
		settling: make(map[string]struct{}),
		ids:      ids,
		stock:    stock,
	}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, draft domain.Draft) outcome.Outcome[domain.Order, failure.Integration] {
	if cerr, done := failure.FromContext(ctx.Err()); done {
		return outcome.Failure[domain.Order, failure.Integration](cerr)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entity, err := domain.New(r.ids.NewID(), draft)
	if err != nil {
		return outcome.Failure[domain.Order, failure.Integration](failure.DatabaseError{Message: "invalid order", Err: err})
	}
	if _, exists := r.orders[entity.ID]; exists {
		return outcome.Failure[domain.Order, failure.Integration](failure.DatabaseError{Message: "duplicate order id " + entity.ID})
	}

	r.orders[entity.ID] = entity.Clone()
	return outcome.Success[domain.Order, failure.Integration](*entity)
}

func (r *OrderRepository) RecordPaymentForOrder(ctx context.Context, orderID, transactionID string, amount int64) outcome.Outcome[domain.Order, failure.Integration] {
	if cerr, done := failure.FromContext(ctx.Err()); done {
		return outcome.Failure[domain.Order, failure.Integration](cerr)
	}

	r.mu.Lock()
	stored, ok := r.orders[orderID]
	if !ok {
		r.mu.Unlock()
		return outcome.Failure[domain.Order, failure.Integration](failure.DatabaseError{Message: "record payment", Err: domain.ErrNotFound})
	}
	if _, busy := r.settling[orderID]; busy {
		r.mu.Unlock()
		return outcome.Failure[domain.Order, failure.Integration](failure.DatabaseError{Message: "record payment", Err: ErrPaymentInProgress})
	}

	next := stored.Clone()
	wasPaid := next.Status == domain.StatusPaid
	if err := next.RecordPayment(transactionID, amount); err != nil {
		r.mu.Unlock()
		return outcome.Failure[domain.Order, failure.Integration](failure.DatabaseError{Message: "record payment", Err: err})
	}
	if wasPaid || r.stock == nil {
		r.orders[orderID] = next
		r.mu.Unlock()
		return outcome.Success[domain.Order, failure.Integration](*next.Clone())
	}
	r.settling[orderID] = struct{}{}
	r.mu.Unlock()

	err := r.stock.Deduct(ctx, next.ProductID, 1)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.settling, orderID)
	if err != nil {
		return outcome.Failure[domain.Order, failure.Integration](failure.DatabaseError{Message: "deduct stock", Err: err})
	}
	r.orders[orderID] = next
	return outcome.Success[domain.Order, failure.Integration](*next.Clone())
}

// Get returns a copy of a stored order.
func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}
