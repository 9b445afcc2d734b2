package httppresentation

import (
	"net/http"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
)

const (
	msgOutOfStock      = "Product out of stock"
	msgProductNotFound = "Product not found"
	msgPaymentFailed   = "Payment failed"
	msgInternal        = "Something went wrong"
)

// Verdict is what a checkout result means for the client and for operators.
type Verdict struct {
	Status  int
	Message string
	Level   observability.Level
	Event   string
}

// Classify maps a checkout result to a response and a log severity. Business
// rejections are warnings with a specific message; integration trouble is an
// error with a generic one.
func Classify(res checkout.Result) Verdict {
	if res.IsSuccess() {
		return Verdict{Status: http.StatusOK, Level: observability.LevelInfo, Event: "order_handled"}
	}
	return checkout.MatchFailure(res.FailureValue(), stepVerdicts{})
}

func internalError(event string) Verdict {
	return Verdict{Status: http.StatusInternalServerError, Message: msgInternal, Level: observability.LevelError, Event: event}
}

type stepVerdicts struct{}

func (stepVerdicts) GetProduct(f checkout.GetProductFailure) Verdict {
	return failure.Match[Verdict](f.Reason, causeVerdicts{event: "get_product_failed"})
}

func (stepVerdicts) GetInventoryForProduct(f checkout.GetInventoryForProductFailure) Verdict {
	return failure.MatchIntegration[Verdict](f.Reason, causeVerdicts{event: "get_inventory_failed"})
}

func (stepVerdicts) OutOfStock(checkout.OutOfStockFailure) Verdict {
	return Verdict{Status: http.StatusBadRequest, Message: msgOutOfStock, Level: observability.LevelWarn, Event: "product_out_of_stock"}
}

func (stepVerdicts) CreateOrder(checkout.CreateOrderFailure) Verdict {
	return internalError("create_order_failed")
}

func (stepVerdicts) PSPMakePayment(f checkout.PSPMakePaymentFailure) Verdict {
	return failure.Match[Verdict](f.Reason, causeVerdicts{event: "make_payment_failed"})
}

// RecordPayment is always an error: the customer has been charged.
func (stepVerdicts) RecordPayment(checkout.RecordPaymentFailure) Verdict {
	return internalError("record_payment_failed")
}

// causeVerdicts grades the root cause of a step failure. event names the step
// for integration failures.
type causeVerdicts struct{ event string }

func (v causeVerdicts) Connection(failure.ConnectionError) Verdict     { return internalError(v.event) }
func (v causeVerdicts) Database(failure.DatabaseError) Verdict         { return internalError(v.event) }
func (v causeVerdicts) HTTPResponse(failure.HTTPResponseError) Verdict { return internalError(v.event) }

func (causeVerdicts) ProductNotFound(failure.ProductNotFound) Verdict {
	return Verdict{Status: http.StatusNotFound, Message: msgProductNotFound, Level: observability.LevelWarn, Event: "product_not_found"}
}

func (causeVerdicts) OutOfStock(failure.OutOfStock) Verdict {
	return Verdict{Status: http.StatusBadRequest, Message: msgOutOfStock, Level: observability.LevelWarn, Event: "product_out_of_stock"}
}

func (causeVerdicts) InsufficientFunds(failure.InsufficientFunds) Verdict {
	return Verdict{Status: http.StatusBadRequest, Message: msgPaymentFailed, Level: observability.LevelWarn, Event: "payment_declined"}
}

func (causeVerdicts) FraudSuspected(failure.FraudSuspected) Verdict {
	return Verdict{Status: http.StatusBadRequest, Message: msgPaymentFailed, Level: observability.LevelWarn, Event: "payment_declined"}
}
