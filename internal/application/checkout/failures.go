package checkout

import (
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
)

// Step names the pipeline step a failure came from.
type Step string

const (
	StepGetProduct             Step = "GetProductFailure"
	StepGetInventoryForProduct Step = "GetInventoryForProductFailure"
	StepOutOfStock             Step = "OutOfStockFailure"
	StepCreateOrder            Step = "CreateOrderFailure"
	StepPSPMakePayment         Step = "PSPMakePaymentFailure"
	StepRecordPayment          Step = "RecordPaymentFailure"
)

// Failure is the failure side of a checkout Result. It wraps the untouched
// connector failure with the step it came from.
type Failure interface {
	error
	Step() Step
	Cause() failure.Failure
	LogFields() map[string]any
	stepFailure()
}

type GetProductFailure struct {
	ProductID string
	Reason    failure.ProductLookup
}

type GetInventoryForProductFailure struct {
	ProductID string
	Reason    failure.Integration
}

// OutOfStockFailure is raised by the pipeline itself: the inventory lookup
// succeeded but reported no stock.
type OutOfStockFailure struct {
	ProductID string
}

type CreateOrderFailure struct {
	ProductID string
	Reason    failure.Integration
}

type PSPMakePaymentFailure struct {
	OrderID string
	Reason  failure.Payment
}

// RecordPaymentFailure leaves a captured charge that is not recorded against
// its order. Nothing reverses the charge.
type RecordPaymentFailure struct {
	OrderID       string
	TransactionID string
	Reason        failure.Integration
}

func (f GetProductFailure) Error() string {
	return fmt.Sprintf("get product %s: %v", f.ProductID, f.Reason)
}
func (f GetProductFailure) Unwrap() error          { return f.Reason }
func (GetProductFailure) Step() Step               { return StepGetProduct }
func (f GetProductFailure) Cause() failure.Failure { return f.Reason }
func (GetProductFailure) stepFailure()             {}
func (f GetProductFailure) LogFields() map[string]any {
	return map[string]any{"step": string(StepGetProduct), "product_id": f.ProductID, "cause": f.Reason}
}

func (f GetInventoryForProductFailure) Error() string {
	return fmt.Sprintf("get inventory for product %s: %v", f.ProductID, f.Reason)
}
func (f GetInventoryForProductFailure) Unwrap() error          { return f.Reason }
func (GetInventoryForProductFailure) Step() Step               { return StepGetInventoryForProduct }
func (f GetInventoryForProductFailure) Cause() failure.Failure { return f.Reason }
func (GetInventoryForProductFailure) stepFailure()             {}
func (f GetInventoryForProductFailure) LogFields() map[string]any {
	return map[string]any{"step": string(StepGetInventoryForProduct), "product_id": f.ProductID, "cause": f.Reason}
}

func (f OutOfStockFailure) Error() string {
	return "product out of stock: " + f.ProductID
}
func (f OutOfStockFailure) Unwrap() error { return f.Cause() }
func (OutOfStockFailure) Step() Step      { return StepOutOfStock }
func (f OutOfStockFailure) Cause() failure.Failure {
	return failure.OutOfStock{ProductID: f.ProductID}
}
func (OutOfStockFailure) stepFailure() {}
func (f OutOfStockFailure) LogFields() map[string]any {
	return map[string]any{"step": string(StepOutOfStock), "product_id": f.ProductID}
}

func (f CreateOrderFailure) Error() string {
	return fmt.Sprintf("create order for product %s: %v", f.ProductID, f.Reason)
}
func (f CreateOrderFailure) Unwrap() error          { return f.Reason }
func (CreateOrderFailure) Step() Step               { return StepCreateOrder }
func (f CreateOrderFailure) Cause() failure.Failure { return f.Reason }
func (CreateOrderFailure) stepFailure()             {}
func (f CreateOrderFailure) LogFields() map[string]any {
	return map[string]any{"step": string(StepCreateOrder), "product_id": f.ProductID, "cause": f.Reason}
}

func (f PSPMakePaymentFailure) Error() string {
	return fmt.Sprintf("make payment for order %s: %v", f.OrderID, f.Reason)
}
func (f PSPMakePaymentFailure) Unwrap() error          { return f.Reason }
func (PSPMakePaymentFailure) Step() Step               { return StepPSPMakePayment }
func (f PSPMakePaymentFailure) Cause() failure.Failure { return f.Reason }
func (PSPMakePaymentFailure) stepFailure()             {}
func (f PSPMakePaymentFailure) LogFields() map[string]any {
	return map[string]any{"step": string(StepPSPMakePayment), "order_id": f.OrderID, "cause": f.Reason}
}

func (f RecordPaymentFailure) Error() string {
	return fmt.Sprintf("record payment %s for order %s: %v", f.TransactionID, f.OrderID, f.Reason)
}
func (f RecordPaymentFailure) Unwrap() error          { return f.Reason }
func (RecordPaymentFailure) Step() Step               { return StepRecordPayment }
func (f RecordPaymentFailure) Cause() failure.Failure { return f.Reason }
func (RecordPaymentFailure) stepFailure()             {}
func (f RecordPaymentFailure) LogFields() map[string]any {
	return map[string]any{
		"step":           string(StepRecordPayment),
		"order_id":       f.OrderID,
		"transaction_id": f.TransactionID,
		"cause":          f.Reason,
	}
}

// FailureVisitor has one method per pipeline step failure.
type FailureVisitor[R any] interface {
	GetProduct(GetProductFailure) R
	GetInventoryForProduct(GetInventoryForProductFailure) R
	OutOfStock(OutOfStockFailure) R
	CreateOrder(CreateOrderFailure) R
	PSPMakePayment(PSPMakePaymentFailure) R
	RecordPayment(RecordPaymentFailure) R
}

// MatchFailure dispatches f to the visitor method for its step.
func MatchFailure[R any](f Failure, v FailureVisitor[R]) R {
	switch x := f.(type) {
	case GetProductFailure:
		return v.GetProduct(x)
	case GetInventoryForProductFailure:
		return v.GetInventoryForProduct(x)
	case OutOfStockFailure:
		return v.OutOfStock(x)
	case CreateOrderFailure:
		return v.CreateOrder(x)
	case PSPMakePaymentFailure:
		return v.PSPMakePayment(x)
	case RecordPaymentFailure:
		return v.RecordPayment(x)
	}
	// Failure is sealed; only a nil interface gets here.
	panic(fmt.Sprintf("checkout: unmatched failure %T", f))
}
