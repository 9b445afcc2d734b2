// Package checkout orchestrates a single purchase: resolve the product, check
// stock, create the order, charge the PSP and record the payment. Each step is
// attempted at most once and the first failure ends the run.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	checkoutService       = "checkout-service"
	useCaseReceiveOrder   = "checkout.receive_order"
	spanPrefix            = "UC."
	connectorSpanPrefix   = "Connector."
	publishPeer           = "outbox"
	publishTimeout        = 300 * time.Millisecond
	peerCatalog           = "catalog"
	peerInventory         = "inventory"
	peerOrders            = "orders"
	peerPSP               = "psp"
	endpointGetProduct    = "get_product"
	endpointGetInventory  = "get_inventory_for_product"
	endpointCreateOrder   = "create_order"
	endpointMakePayment   = "make_payment"
	endpointRecordPayment = "record_payment_for_order"
)

var (
	ErrMissingProductID = errors.New("checkout: product id is required")
	ErrInvalidProduct   = errors.New("checkout: invalid product")
)

// Request is an already-decoded purchase request. When Product is set the
// catalog lookup is skipped and ProductID is ignored.
type Request struct {
	ProductID string
	Product   *product.Product
	Customer  order.Customer
}

// Validate rejects requests the pipeline must never see.
func (r Request) Validate() error {
	if r.Product != nil {
		if err := r.Product.Validate(); err != nil {
			return errors.Join(ErrInvalidProduct, err)
		}
		return nil
	}
	if r.ProductID == "" {
		return ErrMissingProductID
	}
	return nil
}

func (r Request) productID() string {
	if r.Product != nil {
		return r.Product.ID
	}
	return r.ProductID
}

// Confirmation is returned when every step succeeded.
type Confirmation struct {
	OrderID       string
	TransactionID string
	Product       product.Product
	Customer      order.Customer
}

type Result = outcome.Outcome[Confirmation, Failure]

// Pipeline runs ReceiveOrder against a fixed set of connectors. It keeps no
// per-request state, so one Pipeline serves concurrent requests.
type Pipeline struct {
	products  ProductConnector
	inventory InventoryConnector
	orders    OrderConnector
	psp       PSPConnector
	publisher domoutbox.Publisher
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	failCounter  observability.Counter   // checkout_failures_total{step,kind}

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewPipeline wires the connectors. publisher may be nil, in which case no
// order.paid event is emitted.
func NewPipeline(c Connectors, publisher domoutbox.Publisher, tel observability.Observability) *Pipeline {
	if c.Products == nil || c.Inventory == nil || c.Orders == nil || c.PSP == nil {
		panic("checkout.NewPipeline: all connectors are required")
	}
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()

	return &Pipeline{
		products:     c.Products,
		inventory:    c.Inventory,
		orders:       c.Orders,
		psp:          c.PSP,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", checkoutService)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		failCounter:  m.Counter(observability.MCheckoutFailures),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

// Execute makes Pipeline an application.UseCase.
func (p *Pipeline) Execute(ctx context.Context, req Request) Result {
	return p.ReceiveOrder(ctx, req)
}

// ReceiveOrder runs the checkout steps in order and returns exactly one
// Outcome. Nothing is retried, deduplicated or compensated: two identical
// requests create two orders and two charges.
func (p *Pipeline) ReceiveOrder(ctx context.Context, req Request) (res Result) {
	logger := logctx.FromOr(ctx, p.log).With(observability.F("use_case", useCaseReceiveOrder))

	ctx, span := p.tel.Tracer().Start(ctx, spanPrefix+"ReceiveOrder",
		attribute.String("use_case", useCaseReceiveOrder),
		attribute.String("checkout.product_id", req.productID()),
		attribute.Bool("checkout.product_supplied", req.Product != nil),
	)
	start := time.Now()
	stage, failedAfter := StageStarted, StageStarted
	var publishErr error

	advance := func() {
		stage = stage.Next()
		span.AddEvent("checkout.stage", trace.WithAttributes(attribute.String("stage", stage.String())))
	}
	fail := func(f Failure) Result {
		failedAfter, stage = stage, stage.Fail()
		span.AddEvent("checkout.stage", trace.WithAttributes(
			attribute.String("stage", stage.String()),
			attribute.String("failed_after", failedAfter.String()),
		))
		return outcome.Failure[Confirmation, Failure](f)
	}

	defer func() {
		lat := time.Since(start).Seconds()
		result, statusText := "success", "OK"
		fields := []observability.Field{observability.F("stage", stage.String())}

		if res.IsFailure() {
			f := res.FailureValue()
			result, statusText = "failure", string(f.Step())
			span.RecordError(f)
			span.SetStatus(codes.Error, statusText)
			span.SetAttributes(
				attribute.String("checkout.failure_step", string(f.Step())),
				attribute.String("checkout.failure_kind", string(f.Cause().Kind())),
			)
			p.failCounter.Add(1,
				observability.L("step", string(f.Step())),
				observability.L("kind", string(f.Cause().Kind())),
			)
			fields = append(fields,
				observability.F("failed_after", failedAfter.String()),
				observability.F("failure_step", string(f.Step())),
				observability.F("failure_kind", string(f.Cause().Kind())),
				observability.F("failure_family", string(f.Cause().Family())),
			)
		} else if res.IsSuccess() {
			c := res.SuccessValue()
			span.SetStatus(codes.Ok, statusText)
			span.SetAttributes(
				attribute.String("order.id", c.OrderID),
				attribute.String("payment.transaction_id", c.TransactionID),
			)
			fields = append(fields,
				observability.F("order_id", c.OrderID),
				observability.F("transaction_id", c.TransactionID),
			)
		}
		span.End()

		p.reqCounter.Add(1,
			observability.L("use_case", useCaseReceiveOrder),
			observability.L("outcome", result),
		)
		p.durHistogram.Observe(lat, observability.L("use_case", useCaseReceiveOrder))

		fields = append(fields,
			observability.F("outcome", result),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		)
		fields = append(fields, logctx.TraceFields(ctx)...)
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	// 1. resolve product
	var prod product.Product
	if req.Product != nil {
		prod = *req.Product
	} else {
		if cerr, done := canceled(ctx); done {
			return fail(GetProductFailure{ProductID: req.ProductID, Reason: cerr})
		}
		r := outcome.MapFailure(call(ctx, p, peerCatalog, endpointGetProduct, func(ctx context.Context) outcome.Outcome[product.Product, failure.ProductLookup] {
			return p.products.GetProduct(ctx, req.ProductID)
		}), func(f failure.ProductLookup) Failure {
			return GetProductFailure{ProductID: req.ProductID, Reason: f}
		})
		if r.IsFailure() {
			return fail(r.FailureValue())
		}
		prod = r.SuccessValue()
	}
	advance()

	// 2. inventory
	if cerr, done := canceled(ctx); done {
		return fail(GetInventoryForProductFailure{ProductID: prod.ID, Reason: cerr})
	}
	inv := outcome.MapFailure(call(ctx, p, peerInventory, endpointGetInventory, func(ctx context.Context) outcome.Outcome[inventory.Level, failure.Integration] {
		return p.inventory.GetInventoryForProduct(ctx, prod.ID)
	}), func(f failure.Integration) Failure {
		return GetInventoryForProductFailure{ProductID: prod.ID, Reason: f}
	})
	if inv.IsFailure() {
		return fail(inv.FailureValue())
	}

	// 3. stock gate
	level := inv.SuccessValue()
	span.SetAttributes(attribute.Int("inventory.quantity", level.Quantity))
	if !level.InStock() {
		return fail(OutOfStockFailure{ProductID: prod.ID})
	}
	advance()

	// 4. create order
	if cerr, done := canceled(ctx); done {
		return fail(CreateOrderFailure{ProductID: prod.ID, Reason: cerr})
	}
	created := outcome.MapFailure(call(ctx, p, peerOrders, endpointCreateOrder, func(ctx context.Context) outcome.Outcome[order.Order, failure.Integration] {
		return p.orders.CreateOrder(ctx, order.Draft{ProductID: prod.ID, Price: prod.Price, Customer: req.Customer})
	}), func(f failure.Integration) Failure {
		return CreateOrderFailure{ProductID: prod.ID, Reason: f}
	})
	if created.IsFailure() {
		return fail(created.FailureValue())
	}
	ord := created.SuccessValue()
	span.SetAttributes(attribute.String("order.id", ord.ID))
	advance()

	// 5-6. charge, stop on decline or PSP failure
	if cerr, done := canceled(ctx); done {
		return fail(PSPMakePaymentFailure{OrderID: ord.ID, Reason: cerr})
	}
	charged := outcome.MapFailure(call(ctx, p, peerPSP, endpointMakePayment, func(ctx context.Context) outcome.Outcome[payment.Transaction, failure.Payment] {
		return p.psp.MakePayment(ctx, ord.ID, prod.Price)
	}), func(f failure.Payment) Failure {
		return PSPMakePaymentFailure{OrderID: ord.ID, Reason: f}
	})
	if charged.IsFailure() {
		return fail(charged.FailureValue())
	}
	tx := charged.SuccessValue()
	advance()

	// 7. record payment; a failure here leaves the charge in place
	if cerr, done := canceled(ctx); done {
		return fail(RecordPaymentFailure{OrderID: ord.ID, TransactionID: tx.ID, Reason: cerr})
	}
	recorded := outcome.MapFailure(call(ctx, p, peerOrders, endpointRecordPayment, func(ctx context.Context) outcome.Outcome[order.Order, failure.Integration] {
		return p.orders.RecordPaymentForOrder(ctx, ord.ID, tx.ID, prod.Price)
	}), func(f failure.Integration) Failure {
		return RecordPaymentFailure{OrderID: ord.ID, TransactionID: tx.ID, Reason: f}
	})
	if recorded.IsFailure() {
		return fail(recorded.FailureValue())
	}
	advance()

	// publish event (best-effort; never changes the result)
	if p.publisher != nil {
		paid := recorded.SuccessValue()
		publishErr = p.publish(ctx, order.NewPaidEvent(&paid))
		if publishErr != nil {
			span.RecordError(publishErr)
			logger.Warn("event_publish_failed",
				observability.F("event", order.PaidEvent{}.EventName()),
				observability.F("order_id", ord.ID),
				observability.F("error", publishErr.Error()),
			)
		}
	}

	advance()
	return outcome.Map(recorded, func(order.Order) Confirmation {
		return Confirmation{
			OrderID:       ord.ID,
			TransactionID: tx.ID,
			Product:       prod,
			Customer:      req.Customer,
		}
	})
}

func (p *Pipeline) publish(ctx context.Context, e domoutbox.Event) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	pubStart := time.Now()
	pubOutcome := "success"
	err := p.publisher.Publish(pubCtx, e)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		pubOutcome = "canceled"
	default:
		pubOutcome = "error"
	}

	p.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", pubOutcome),
	)
	p.extHistogram.Observe(time.Since(pubStart).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
	)
	return err
}

// call runs one connector invocation inside its own span and records the
// external RED metrics for it.
func call[S any, F failure.Failure](
	ctx context.Context,
	p *Pipeline,
	peer, endpoint string,
	fn func(context.Context) outcome.Outcome[S, F],
) outcome.Outcome[S, F] {
	ctx, span := p.tel.Tracer().Start(ctx, connectorSpanPrefix+peer+"."+endpoint,
		attribute.String("peer", peer),
		attribute.String("endpoint", endpoint),
	)
	start := time.Now()

	res := fn(ctx)

	result := "success"
	if res.IsFailure() {
		f := res.FailureValue()
		result = "failure"
		span.RecordError(f)
		span.SetStatus(codes.Error, string(f.Kind()))
		span.SetAttributes(
			attribute.String("failure.kind", string(f.Kind())),
			attribute.String("failure.family", string(f.Family())),
		)
	} else {
		span.SetStatus(codes.Ok, "OK")
	}
	span.End()

	p.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", result),
	)
	p.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
	return res
}

// canceled reports whether ctx is done and, if so, the connection failure to
// charge to the step that was about to run.
func canceled(ctx context.Context) (failure.ConnectionError, bool) {
	return failure.FromContext(ctx.Err())
}
