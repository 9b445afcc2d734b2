package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
)

type ProductCatalog struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewProductCatalog(products ...domain.Product) *ProductCatalog {
	c := &ProductCatalog{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Put adds or replaces a product.
func (c *ProductCatalog) Put(p domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
	return nil
}

func (c *ProductCatalog) GetProduct(ctx context.Context, productID string) outcome.Outcome[domain.Product, failure.ProductLookup] {
	if cerr, done := failure.FromContext(ctx.Err()); done {
		return outcome.Failure[domain.Product, failure.ProductLookup](cerr)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[productID]
	if !ok {
		return outcome.Failure[domain.Product, failure.ProductLookup](failure.ProductNotFound{ProductID: productID})
	}
	return outcome.Success[domain.Product, failure.ProductLookup](p)
}
