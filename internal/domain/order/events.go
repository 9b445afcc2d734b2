package order

import "time"

// PaidEvent is emitted once a checkout has charged the customer and the
// payment is recorded against the order.
type PaidEvent struct {
	OrderID       string    `json:"order_id"`
	ProductID     string    `json:"product_id"`
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	CustomerEmail string    `json:"customer_email"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (PaidEvent) EventName() string { return "order.paid" }

func (e PaidEvent) Key() string { return e.OrderID }

func NewPaidEvent(o *Order) PaidEvent {
	return PaidEvent{
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		TransactionID: o.TransactionID,
		Amount:        o.Price,
		CustomerEmail: o.Customer.Email,
		OccurredAt:    time.Now().UTC(),
	}
}
