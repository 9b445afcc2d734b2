package mysql

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
	"gorm.io/gorm"
)

type ProductCatalog struct {
	db *gorm.DB
}

func NewProductCatalog(db *gorm.DB) *ProductCatalog {
	return &ProductCatalog{db: db}
}

func (c *ProductCatalog) GetProduct(ctx context.Context, productID string) outcome.Outcome[product.Product, failure.ProductLookup] {
	var model ProductModel
	err := c.db.WithContext(ctx).Where("id = ?", productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return outcome.Failure[product.Product, failure.ProductLookup](failure.ProductNotFound{ProductID: productID})
		}
		return outcome.Failure[product.Product, failure.ProductLookup](classify("get product", err))
	}
	return outcome.Success[product.Product, failure.ProductLookup](toDomainProduct(&model))
}

// Upsert writes p, replacing any row with the same id. Used for seeding.
func (c *ProductCatalog) Upsert(ctx context.Context, p product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return c.db.WithContext(ctx).Save(&ProductModel{ID: p.ID, Name: p.Name, Price: p.Price}).Error
}
