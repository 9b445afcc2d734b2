package product

import "errors"

var (
	ErrMissingID     = errors.New("product: id is required")
	ErrNegativePrice = errors.New("product: price must be zero or greater")
)

// Product is the business-level view of a catalog entry. Price is in minor
// currency units.
type Product struct {
	ID    string
	Name  string
	Price int64
}

func (p Product) Validate() error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}
