package order

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		draft   Draft
		wantErr error
	}{
		{name: "ok", draft: Draft{ProductID: "p1", Price: 100}},
		{name: "free", draft: Draft{ProductID: "p1", Price: 0}},
		{name: "missing_product", draft: Draft{Price: 100}, wantErr: ErrMissingProduct},
		{name: "negative_price", draft: Draft{ProductID: "p1", Price: -1}, wantErr: ErrInvalidPrice},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, err := New("o-1", tt.draft)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if err == nil && o.Status != StatusPendingPayment {
				t.Fatalf("expected pending_payment, got %s", o.Status)
			}
		})
	}
}

func TestRecordPayment(t *testing.T) {
	t.Parallel()

	newOrder := func(t *testing.T) *Order {
		t.Helper()
		o, err := New("o-1", Draft{ProductID: "p1", Price: 100, Customer: Customer{Email: "a@b.c"}})
		if err != nil {
			t.Fatalf("new order: %v", err)
		}
		return o
	}

	t.Run("pending_to_paid", func(t *testing.T) {
		t.Parallel()

		o := newOrder(t)
		if err := o.RecordPayment("t1", 100); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status != StatusPaid || o.TransactionID != "t1" {
			t.Fatalf("unexpected order state: %+v", o)
		}
	})

	t.Run("same_transaction_twice", func(t *testing.T) {
		t.Parallel()

		o := newOrder(t)
		_ = o.RecordPayment("t1", 100)
		if err := o.RecordPayment("t1", 100); err != nil {
			t.Fatalf("expected replay to succeed, got %v", err)
		}
	})

	t.Run("different_transaction_rejected", func(t *testing.T) {
		t.Parallel()

		o := newOrder(t)
		_ = o.RecordPayment("t1", 100)
		if err := o.RecordPayment("t2", 100); !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("amount_mismatch", func(t *testing.T) {
		t.Parallel()

		o := newOrder(t)
		if err := o.RecordPayment("t1", 99); !errors.Is(err, ErrAmountMismatch) {
			t.Fatalf("expected ErrAmountMismatch, got %v", err)
		}
		if o.Status != StatusPendingPayment {
			t.Fatalf("status must not change on rejection, got %s", o.Status)
		}
	})

	t.Run("missing_transaction", func(t *testing.T) {
		t.Parallel()

		o := newOrder(t)
		if err := o.RecordPayment("", 100); !errors.Is(err, ErrMissingTransaction) {
			t.Fatalf("expected ErrMissingTransaction, got %v", err)
		}
	})
}

func TestNewPaidEvent(t *testing.T) {
	t.Parallel()

	o, _ := New("o-9", Draft{ProductID: "p1", Price: 250, Customer: Customer{Email: "x@y.z"}})
	_ = o.RecordPayment("t9", 250)

	e := NewPaidEvent(o)
	if e.EventName() != "order.paid" || e.Key() != "o-9" {
		t.Fatalf("unexpected routing: %s %s", e.EventName(), e.Key())
	}
	if e.TransactionID != "t9" || e.Amount != 250 || e.CustomerEmail != "x@y.z" {
		t.Fatalf("unexpected payload: %+v", e)
	}
}
