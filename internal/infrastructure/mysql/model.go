package mysql

import (
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
)

// ProductModel maps the products table.
type ProductModel struct {
	ID    string `gorm:"primaryKey;size:64"`
	Name  string `gorm:"size:255"`
	Price int64  `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "products"
}

// OrderModel maps the orders table. Customer fields are flattened.
type OrderModel struct {
	ID              string `gorm:"primaryKey;size:64"`
	ProductID       string `gorm:"size:64;index;not null"`
	Price           int64  `gorm:"not null"`
	CustomerName    string `gorm:"size:255"`
	CustomerEmail   string `gorm:"size:255"`
	CustomerAddress string `gorm:"type:text"`
	TransactionID   string `gorm:"size:128"`
	Status          string `gorm:"size:32;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

func toDomainProduct(m *ProductModel) product.Product {
	return product.Product{ID: m.ID, Name: m.Name, Price: m.Price}
}

func toOrderModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:              o.ID,
		ProductID:       o.ProductID,
		Price:           o.Price,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		CustomerAddress: o.Customer.Address,
		TransactionID:   o.TransactionID,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toDomainOrder(m *OrderModel) *order.Order {
	return &order.Order{
		ID:        m.ID,
		ProductID: m.ProductID,
		Price:     m.Price,
		Customer: order.Customer{
			Name:    m.CustomerName,
			Email:   m.CustomerEmail,
			Address: m.CustomerAddress,
		},
		TransactionID: m.TransactionID,
		Status:        order.Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
