package inventory

import (
	"errors"
	"time"
)

var (
	ErrInvalidQuantity   = errors.New("inventory: quantity must be greater than zero")
	ErrNegativeStock     = errors.New("inventory: stock must be zero or greater")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// Level is a read-only snapshot of available stock. Nothing is reserved by
// reading it.
type Level struct {
	ProductID string
	Quantity  int
}

// InStock reports whether at least one unit can be sold.
func (l Level) InStock() bool { return l.Quantity >= 1 }

// Item is the mutable stock record owned by a store implementation.
type Item struct {
	ProductID string
	Quantity  int
	UpdatedAt time.Time
}

func NewItem(productID string, quantity int) (*Item, error) {
	if quantity < 0 {
		return nil, ErrNegativeStock
	}
	return &Item{
		ProductID: productID,
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (i *Item) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > i.Quantity {
		return ErrInsufficientStock
	}
	i.Quantity -= quantity
	i.touch()
	return nil
}

func (i *Item) Level() Level {
	return Level{ProductID: i.ProductID, Quantity: i.Quantity}
}

func (i *Item) touch() {
	i.UpdatedAt = time.Now().UTC()
}
