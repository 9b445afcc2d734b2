// Package failure defines the closed set of ways an external collaborator call
// can go wrong.
//
// Integration failures mean something external was unreachable or errored.
// Business failures mean the external system answered normally but a domain
// rule rejected the request. Every failure is an immutable value that also
// satisfies error, so edges that only speak error can still use errors.As.
package failure

import (
	"context"
	"errors"
	"fmt"
)

// Kind tags a concrete failure.
type Kind string

const (
	KindConnection        Kind = "ConnectionError"
	KindDatabase          Kind = "DatabaseError"
	KindHTTPResponse      Kind = "HttpResponseError"
	KindProductNotFound   Kind = "ProductNotFound"
	KindOutOfStock        Kind = "OutOfStock"
	KindInsufficientFunds Kind = "InsufficientFunds"
	KindFraudSuspected    Kind = "FraudSuspected"
)

// Family groups kinds by who is at fault.
type Family string

const (
	FamilyIntegration Family = "integration"
	FamilyBusiness    Family = "business"
)

// Connection codes used when a context ends before a call completes.
const (
	CodeCanceled         = "CANCELED"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
)

// Failure is implemented only by the types in this package.
type Failure interface {
	error
	Kind() Kind
	Family() Family
	// LogFields returns the full payload for operator-facing logs.
	LogFields() map[string]any
	sealed()
}

// Integration is the subset of failures caused by transport or storage.
type Integration interface {
	Failure
	integration()
}

// ProductLookup is what a product lookup may fail with.
type ProductLookup interface {
	Failure
	productLookup()
}

// Payment is what a PSP charge may fail with.
type Payment interface {
	Failure
	payment()
}

// ConnectionError: the remote side could not be reached at all.
type ConnectionError struct {
	Code string // e.g. ECONNREFUSED
	Err  error
}

// DatabaseError: the database answered with an error, e.g. a constraint violation.
type DatabaseError struct {
	Message string
	Err     error
}

// HTTPResponseError: an HTTP API answered with an error status.
type HTTPResponseError struct {
	StatusCode int
	Message    string
}

type ProductNotFound struct {
	ProductID string
}

type OutOfStock struct {
	ProductID string
}

type InsufficientFunds struct {
	Message string
}

type FraudSuspected struct {
	Message string
}

func (e ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection error %s: %v", e.Code, e.Err)
	}
	return "connection error " + e.Code
}
func (e ConnectionError) Unwrap() error { return e.Err }
func (ConnectionError) Kind() Kind      { return KindConnection }
func (ConnectionError) Family() Family  { return FamilyIntegration }
func (ConnectionError) sealed()         {}
func (ConnectionError) integration()    {}
func (ConnectionError) productLookup()  {}
func (ConnectionError) payment()        {}
func (e ConnectionError) LogFields() map[string]any {
	return map[string]any{"kind": string(KindConnection), "code": e.Code, "error": errText(e.Err)}
}

func (e DatabaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("database error: %s: %v", e.Message, e.Err)
	}
	return "database error: " + e.Message
}
func (e DatabaseError) Unwrap() error { return e.Err }
func (DatabaseError) Kind() Kind      { return KindDatabase }
func (DatabaseError) Family() Family  { return FamilyIntegration }
func (DatabaseError) sealed()         {}
func (DatabaseError) integration()    {}
func (DatabaseError) productLookup()  {}
func (DatabaseError) payment()        {}
func (e DatabaseError) LogFields() map[string]any {
	return map[string]any{"kind": string(KindDatabase), "message": e.Message, "error": errText(e.Err)}
}

func (e HTTPResponseError) Error() string {
	return fmt.Sprintf("http response error %d: %s", e.StatusCode, e.Message)
}
func (HTTPResponseError) Kind() Kind     { return KindHTTPResponse }
func (HTTPResponseError) Family() Family { return FamilyIntegration }
func (HTTPResponseError) sealed()        {}
func (HTTPResponseError) integration()   {}
func (HTTPResponseError) productLookup() {}
func (HTTPResponseError) payment()       {}
func (e HTTPResponseError) LogFields() map[string]any {
	return map[string]any{"kind": string(KindHTTPResponse), "status_code": e.StatusCode, "message": e.Message}
}

func (e ProductNotFound) Error() string { return "product not found: " + e.ProductID }
func (ProductNotFound) Kind() Kind      { return KindProductNotFound }
func (ProductNotFound) Family() Family  { return FamilyBusiness }
func (ProductNotFound) sealed()         {}
func (ProductNotFound) productLookup()  {}
func (e ProductNotFound) LogFields() map[string]any {
	return map[string]any{"kind": string(KindProductNotFound), "product_id": e.ProductID}
}

func (e OutOfStock) Error() string { return "product out of stock: " + e.ProductID }
func (OutOfStock) Kind() Kind      { return KindOutOfStock }
func (OutOfStock) Family() Family  { return FamilyBusiness }
func (OutOfStock) sealed()         {}
func (e OutOfStock) LogFields() map[string]any {
	return map[string]any{"kind": string(KindOutOfStock), "product_id": e.ProductID}
}

func (e InsufficientFunds) Error() string { return "insufficient funds: " + e.Message }
func (InsufficientFunds) Kind() Kind      { return KindInsufficientFunds }
func (InsufficientFunds) Family() Family  { return FamilyBusiness }
func (InsufficientFunds) sealed()         {}
func (InsufficientFunds) payment()        {}
func (e InsufficientFunds) LogFields() map[string]any {
	return map[string]any{"kind": string(KindInsufficientFunds), "message": e.Message}
}

func (e FraudSuspected) Error() string { return "fraud suspected: " + e.Message }
func (FraudSuspected) Kind() Kind      { return KindFraudSuspected }
func (FraudSuspected) Family() Family  { return FamilyBusiness }
func (FraudSuspected) sealed()         {}
func (FraudSuspected) payment()        {}
func (e FraudSuspected) LogFields() map[string]any {
	return map[string]any{"kind": string(KindFraudSuspected), "message": e.Message}
}

// FromContext turns an ended context into a ConnectionError. It returns false
// when err is not a context cancellation or deadline.
func FromContext(err error) (ConnectionError, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ConnectionError{Code: CodeDeadlineExceeded, Err: err}, true
	case errors.Is(err, context.Canceled):
		return ConnectionError{Code: CodeCanceled, Err: err}, true
	default:
		return ConnectionError{}, false
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
