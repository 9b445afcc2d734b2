package order

// OrderState implements the state pattern for order lifecycle transitions.
type OrderState interface {
	Status() Status
	OnPaymentRecorded(o *Order, transactionID string) (OrderState, error)
}

func stateFor(s Status) OrderState {
	switch s {
	case StatusPendingPayment:
		return pendingPaymentState{}
	case StatusPaid:
		return paidState{}
	default:
		return unknownState{status: s}
	}
}

type pendingPaymentState struct{}

func (pendingPaymentState) Status() Status { return StatusPendingPayment }

func (pendingPaymentState) OnPaymentRecorded(o *Order, transactionID string) (OrderState, error) {
	o.TransactionID = transactionID
	return paidState{}, nil
}

type paidState struct{}

func (paidState) Status() Status { return StatusPaid }

// Recording the same transaction twice is a no-op; a different one is rejected.
func (paidState) OnPaymentRecorded(o *Order, transactionID string) (OrderState, error) {
	if o.TransactionID == transactionID {
		return paidState{}, nil
	}
	return nil, ErrInvalidStateTransition
}

type unknownState struct{ status Status }

func (s unknownState) Status() Status { return s.status }

func (unknownState) OnPaymentRecorded(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}
