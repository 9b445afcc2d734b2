package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	drivermysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind failure.Kind
		wantCode string
	}{
		{
			name:     "server error",
			err:      &drivermysql.MySQLError{Number: 1062, Message: "Duplicate entry"},
			wantKind: failure.KindDatabase,
		},
		{
			name:     "connection refused",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			wantKind: failure.KindConnection,
			wantCode: "ECONNREFUSED",
		},
		{
			name:     "bad connection",
			err:      fmt.Errorf("exec: %w", driver.ErrBadConn),
			wantKind: failure.KindConnection,
			wantCode: "BAD_CONNECTION",
		},
		{
			name:     "invalid connection",
			err:      drivermysql.ErrInvalidConn,
			wantKind: failure.KindConnection,
			wantCode: "BAD_CONNECTION",
		},
		{
			name:     "network timeout",
			err:      &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}},
			wantKind: failure.KindConnection,
			wantCode: "ETIMEDOUT",
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantKind: failure.KindConnection,
			wantCode: failure.CodeDeadlineExceeded,
		},
		{
			name:     "anything else",
			err:      errors.New("sql: converting argument"),
			wantKind: failure.KindDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classify("op", tt.err)
			if got.Kind() != tt.wantKind {
				t.Fatalf("kind = %s, want %s", got.Kind(), tt.wantKind)
			}
			if conn, ok := got.(failure.ConnectionError); ok && conn.Code != tt.wantCode {
				t.Fatalf("code = %s, want %s", conn.Code, tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("root error not preserved: %v", got)
			}
		})
	}
}

func TestOrderModelRoundTrip(t *testing.T) {
	t.Parallel()

	o, err := order.New("123", order.Draft{
		ProductID: "p1",
		Price:     100,
		Customer:  order.Customer{Name: "Alice", Email: "a@example.com", Address: "1 Main St"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := o.RecordPayment("t1", 100); err != nil {
		t.Fatal(err)
	}

	back := toDomainOrder(toOrderModel(o))
	if back.ID != o.ID || back.Customer != o.Customer || back.TransactionID != "t1" || back.Status != order.StatusPaid {
		t.Fatalf("mismatch: %+v vs %+v", back, o)
	}
	if !back.CreatedAt.Equal(o.CreatedAt) || !back.UpdatedAt.Equal(o.UpdatedAt) {
		t.Fatalf("timestamps lost: %+v", back)
	}
}

func TestTableNames(t *testing.T) {
	t.Parallel()

	if (ProductModel{}).TableName() != "products" || (OrderModel{}).TableName() != "orders" {
		t.Fatal("unexpected table names")
	}
}

func pendingModel(t *testing.T) *OrderModel {
	t.Helper()

	o, err := order.New("123", order.Draft{
		ProductID: "p1",
		Price:     100,
		Customer:  order.Customer{Name: "Alice", Email: "a@example.com", Address: "1 Main St"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return toOrderModel(o)
}

func TestSettle(t *testing.T) {
	t.Parallel()

	paid := pendingModel(t)
	paid.Status, paid.TransactionID = string(order.StatusPaid), "t1"

	tests := []struct {
		name        string
		model       *OrderModel
		tx          string
		amount      int64
		wantChanged bool
		wantErr     error
	}{
		{name: "pending to paid", model: pendingModel(t), tx: "t1", amount: 100, wantChanged: true},
		{name: "same transaction replayed", model: paid, tx: "t1", amount: 100},
		{name: "different transaction", model: paid, tx: "t2", amount: 100, wantErr: order.ErrInvalidStateTransition},
		{name: "amount mismatch", model: pendingModel(t), tx: "t1", amount: 99, wantErr: order.ErrAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entity, changed, err := settle(tt.model, tt.tx, tt.amount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if changed != tt.wantChanged || entity.Status != order.StatusPaid {
				t.Fatalf("changed = %v status = %s", changed, entity.Status)
			}
		})
	}
}

type fakeStock struct {
	deducted map[string]int
	err      error
}

func (f *fakeStock) Deduct(_ context.Context, productID string, quantity int) error {
	if f.err != nil {
		return f.err
	}
	f.deducted[productID] += quantity
	return nil
}

func TestDeductSold(t *testing.T) {
	t.Parallel()

	stock := &fakeStock{deducted: map[string]int{}}
	repo := NewOrderRepository(nil, nil, stock)
	if err := repo.deductSold(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}
	if stock.deducted["p1"] != 1 {
		t.Fatalf("deducted = %v", stock.deducted)
	}

	if err := NewOrderRepository(nil, nil, nil).deductSold(context.Background(), "p1"); err != nil {
		t.Fatalf("nil stock should be skipped: %v", err)
	}

	sold := errors.New("insufficient stock")
	err := NewOrderRepository(nil, nil, &fakeStock{err: sold}).deductSold(context.Background(), "p1")
	var serr stockError
	if !errors.As(err, &serr) || !errors.Is(err, sold) {
		t.Fatalf("err = %v", err)
	}
}

func TestRecordPaymentResult(t *testing.T) {
	t.Parallel()

	sold := errors.New("insufficient stock")
	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantErr error
	}{
		{name: "deduct failed", err: stockError{err: sold}, wantMsg: "deduct stock", wantErr: sold},
		{name: "missing order", err: fmt.Errorf("first: %w", gorm.ErrRecordNotFound), wantMsg: "record payment", wantErr: order.ErrNotFound},
		{name: "invalid transition", err: order.ErrInvalidStateTransition, wantMsg: "record payment", wantErr: order.ErrInvalidStateTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := recordPaymentResult(nil, tt.err)
			dbErr, ok := res.FailureValue().(failure.DatabaseError)
			if !ok || dbErr.Message != tt.wantMsg || !errors.Is(dbErr.Err, tt.wantErr) {
				t.Fatalf("failure = %#v", res.FailureValue())
			}
		})
	}

	entity := toDomainOrder(pendingModel(t))
	if res := recordPaymentResult(entity, nil); !res.IsSuccess() || res.SuccessValue().ID != "123" {
		t.Fatalf("res = %+v", res)
	}
}
