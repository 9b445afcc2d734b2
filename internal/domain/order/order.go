package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrInvalidPrice           = errors.New("order: price must be zero or greater")
	ErrMissingProduct         = errors.New("order: product id is required")
	ErrMissingTransaction     = errors.New("order: transaction id is required")
	ErrAmountMismatch         = errors.New("order: paid amount does not match price")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
)

// Customer details are supplied by the caller and passed through unmodified.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Draft is everything needed to create an order that still awaits payment.
type Draft struct {
	ProductID string
	Price     int64
	Customer  Customer
}

type Order struct {
	ID            string
	ProductID     string
	Price         int64
	Customer      Customer
	TransactionID string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(id string, d Draft) (*Order, error) {
	if d.ProductID == "" {
		return nil, ErrMissingProduct
	}
	if d.Price < 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now().UTC()
	return &Order{
		ID:        id,
		ProductID: d.ProductID,
		Price:     d.Price,
		Customer:  d.Customer,
		Status:    StatusPendingPayment,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RecordPayment attaches a captured PSP transaction to the order.
func (o *Order) RecordPayment(transactionID string, amount int64) error {
	if transactionID == "" {
		return ErrMissingTransaction
	}
	if amount != o.Price {
		return ErrAmountMismatch
	}
	next, err := stateFor(o.Status).OnPaymentRecorded(o, transactionID)
	if err != nil {
		return err
	}
	o.Status = next.Status()
	o.touch()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// IDGenerator hands out order identifiers. Stores own ID assignment.
type IDGenerator interface {
	NewID() string
}
