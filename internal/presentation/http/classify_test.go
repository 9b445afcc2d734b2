package httppresentation

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
)

func failed(f checkout.Failure) checkout.Result {
	return outcome.Failure[checkout.Confirmation, checkout.Failure](f)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	refused := failure.ConnectionError{Code: "ECONNREFUSED", Err: errors.New("dial tcp: connection refused")}

	tests := []struct {
		name      string
		res       checkout.Result
		wantCode  int
		wantMsg   string
		wantLevel observability.Level
	}{
		{
			name:      "success",
			res:       outcome.Success[checkout.Confirmation, checkout.Failure](checkout.Confirmation{OrderID: "123"}),
			wantCode:  http.StatusOK,
			wantLevel: observability.LevelInfo,
		},
		{
			name:      "out of stock",
			res:       failed(checkout.OutOfStockFailure{ProductID: "p1"}),
			wantCode:  http.StatusBadRequest,
			wantMsg:   msgOutOfStock,
			wantLevel: observability.LevelWarn,
		},
		{
			name:      "product not found",
			res:       failed(checkout.GetProductFailure{ProductID: "p1", Reason: failure.ProductNotFound{ProductID: "p1"}}),
			wantCode:  http.StatusNotFound,
			wantMsg:   msgProductNotFound,
			wantLevel: observability.LevelWarn,
		},
		{
			name:      "catalog unreachable",
			res:       failed(checkout.GetProductFailure{ProductID: "p1", Reason: refused}),
			wantCode:  http.StatusInternalServerError,
			wantMsg:   msgInternal,
			wantLevel: observability.LevelError,
		},
		{
			name:      "inventory database error",
			res:       failed(checkout.GetInventoryForProductFailure{ProductID: "p1", Reason: failure.DatabaseError{Message: "timeout"}}),
			wantCode:  http.StatusInternalServerError,
			wantMsg:   msgInternal,
			wantLevel: observability.LevelError,
		},
		{
			name:      "insufficient funds",
			res:       failed(checkout.PSPMakePaymentFailure{OrderID: "123", Reason: failure.InsufficientFunds{Message: "limit"}}),
			wantCode:  http.StatusBadRequest,
			wantMsg:   msgPaymentFailed,
			wantLevel: observability.LevelWarn,
		},
		{
			name:      "fraud suspected",
			res:       failed(checkout.PSPMakePaymentFailure{OrderID: "123", Reason: failure.FraudSuspected{Message: "velocity"}}),
			wantCode:  http.StatusBadRequest,
			wantMsg:   msgPaymentFailed,
			wantLevel: observability.LevelWarn,
		},
		{
			name:      "psp bad gateway",
			res:       failed(checkout.PSPMakePaymentFailure{OrderID: "123", Reason: failure.HTTPResponseError{StatusCode: 502}}),
			wantCode:  http.StatusInternalServerError,
			wantMsg:   msgInternal,
			wantLevel: observability.LevelError,
		},
		{
			name:      "create order",
			res:       failed(checkout.CreateOrderFailure{ProductID: "p1", Reason: failure.DatabaseError{Message: "duplicate"}}),
			wantCode:  http.StatusInternalServerError,
			wantMsg:   msgInternal,
			wantLevel: observability.LevelError,
		},
		{
			name:      "record payment",
			res:       failed(checkout.RecordPaymentFailure{OrderID: "123", TransactionID: "t1", Reason: refused}),
			wantCode:  http.StatusInternalServerError,
			wantMsg:   msgInternal,
			wantLevel: observability.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := Classify(tt.res)
			if v.Status != tt.wantCode || v.Message != tt.wantMsg || v.Level != tt.wantLevel {
				t.Fatalf("verdict = %+v, want %d %q %s", v, tt.wantCode, tt.wantMsg, tt.wantLevel)
			}
			if v.Event == "" {
				t.Fatal("verdict without event name")
			}
		})
	}
}
