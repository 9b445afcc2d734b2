package failure

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
)

type kindVisitor struct{}

func (kindVisitor) Connection(ConnectionError) string          { return "connection" }
func (kindVisitor) Database(DatabaseError) string              { return "database" }
func (kindVisitor) HTTPResponse(HTTPResponseError) string      { return "http" }
func (kindVisitor) ProductNotFound(ProductNotFound) string     { return "product_not_found" }
func (kindVisitor) OutOfStock(OutOfStock) string               { return "out_of_stock" }
func (kindVisitor) InsufficientFunds(InsufficientFunds) string { return "insufficient_funds" }
func (kindVisitor) FraudSuspected(FraudSuspected) string       { return "fraud" }

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		f          Failure
		want       string
		wantKind   Kind
		wantFamily Family
	}{
		{name: "connection", f: ConnectionError{Code: "ECONNREFUSED"}, want: "connection", wantKind: KindConnection, wantFamily: FamilyIntegration},
		{name: "database", f: DatabaseError{Message: "duplicate key"}, want: "database", wantKind: KindDatabase, wantFamily: FamilyIntegration},
		{name: "http", f: HTTPResponseError{StatusCode: 502}, want: "http", wantKind: KindHTTPResponse, wantFamily: FamilyIntegration},
		{name: "product_not_found", f: ProductNotFound{ProductID: "p1"}, want: "product_not_found", wantKind: KindProductNotFound, wantFamily: FamilyBusiness},
		{name: "out_of_stock", f: OutOfStock{ProductID: "p1"}, want: "out_of_stock", wantKind: KindOutOfStock, wantFamily: FamilyBusiness},
		{name: "insufficient_funds", f: InsufficientFunds{Message: "limit"}, want: "insufficient_funds", wantKind: KindInsufficientFunds, wantFamily: FamilyBusiness},
		{name: "fraud", f: FraudSuspected{Message: "velocity"}, want: "fraud", wantKind: KindFraudSuspected, wantFamily: FamilyBusiness},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Match[string](tt.f, kindVisitor{}); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if tt.f.Kind() != tt.wantKind {
				t.Fatalf("expected kind %s, got %s", tt.wantKind, tt.f.Kind())
			}
			if tt.f.Family() != tt.wantFamily {
				t.Fatalf("expected family %s, got %s", tt.wantFamily, tt.f.Family())
			}
			if IsIntegration(tt.f) != (tt.wantFamily == FamilyIntegration) {
				t.Fatalf("IsIntegration mismatch for %s", tt.name)
			}
		})
	}
}

func TestMatchIntegration(t *testing.T) {
	t.Parallel()

	var f Integration = DatabaseError{Message: "deadlock"}
	if got := MatchIntegration[string](f, kindVisitor{}); got != "database" {
		t.Fatalf("expected database, got %q", got)
	}
}

func TestUnwrapKeepsRootCause(t *testing.T) {
	t.Parallel()

	conn := ConnectionError{Code: "ECONNREFUSED", Err: fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)}
	if !errors.Is(conn, syscall.ECONNREFUSED) {
		t.Fatal("expected ConnectionError to unwrap to ECONNREFUSED")
	}

	var wrapped error = fmt.Errorf("create order: %w", DatabaseError{Message: "constraint"})
	var db DatabaseError
	if !errors.As(wrapped, &db) || db.Message != "constraint" {
		t.Fatalf("expected errors.As to find DatabaseError, got %+v", db)
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantOK   bool
		wantCode string
	}{
		{name: "deadline", err: context.DeadlineExceeded, wantOK: true, wantCode: CodeDeadlineExceeded},
		{name: "canceled", err: context.Canceled, wantOK: true, wantCode: CodeCanceled},
		{name: "wrapped_canceled", err: fmt.Errorf("step: %w", context.Canceled), wantOK: true, wantCode: CodeCanceled},
		{name: "other", err: errors.New("boom"), wantOK: false},
		{name: "nil", err: nil, wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := FromContext(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && got.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, got.Code)
			}
		})
	}
}

func TestLogFieldsCarryPayload(t *testing.T) {
	t.Parallel()

	fields := DatabaseError{Message: "insert order", Err: errors.New("conn reset")}.LogFields()
	if fields["kind"] != string(KindDatabase) || fields["message"] != "insert order" || fields["error"] != "conn reset" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
}
