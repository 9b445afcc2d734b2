package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
)

// InventoryRepository keeps stock levels in a map. Products it has never seen
// have zero stock.
type InventoryRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		items: make(map[string]*domain.Item),
	}
}

// Set overwrites the stock level for a product.
func (r *InventoryRepository) Set(productID string, quantity int) error {
	item, err := domain.NewItem(productID, quantity)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[productID] = item
	return nil
}

func (r *InventoryRepository) GetInventoryForProduct(ctx context.Context, productID string) outcome.Outcome[domain.Level, failure.Integration] {
	if cerr, done := failure.FromContext(ctx.Err()); done {
		return outcome.Failure[domain.Level, failure.Integration](cerr)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[productID]
	if !ok {
		return outcome.Success[domain.Level, failure.Integration](domain.Level{ProductID: productID})
	}
	return outcome.Success[domain.Level, failure.Integration](item.Level())
}

// Deduct removes quantity units, failing with domain.ErrInsufficientStock
// rather than going negative.
func (r *InventoryRepository) Deduct(ctx context.Context, productID string, quantity int) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[productID]
	if !ok {
		return domain.ErrInsufficientStock
	}
	next := cloneItem(item)
	if err := next.Deduct(quantity); err != nil {
		return err
	}
	r.items[productID] = next
	return nil
}

func cloneItem(item *domain.Item) *domain.Item {
	if item == nil {
		return nil
	}
	clone := *item
	return &clone
}
