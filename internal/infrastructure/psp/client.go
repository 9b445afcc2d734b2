// Package psp talks to the payment service provider.
package psp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	chargePath      = "/v1/charges"
	maxErrorExcerpt = 512
)

type chargeRequest struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
}

type chargeResponse struct {
	TransactionID string           `json:"transaction_id,omitempty"`
	Decision      payment.Decision `json:"decision"`
	Message       string           `json:"message,omitempty"`
}

// Client charges through the PSP's HTTP API. A 2xx answer carries a decision;
// declines are business failures, everything else is an integration failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     observability.Tracer
}

// NewClient builds a client. httpClient may be nil; request deadlines come
// from the caller's context.
func NewClient(baseURL string, httpClient *http.Client, tracer observability.Tracer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tracer:     tracer,
	}
}

func (c *Client) MakePayment(ctx context.Context, orderID string, amount int64) outcome.Outcome[payment.Transaction, failure.Payment] {
	fail := func(f failure.Payment) outcome.Outcome[payment.Transaction, failure.Payment] {
		return outcome.Failure[payment.Transaction, failure.Payment](f)
	}

	ctx, span := c.tracer.Start(ctx, "PSP.Charge",
		attribute.String("http.method", http.MethodPost),
		attribute.String("http.url", c.baseURL+chargePath),
		attribute.String("order.id", orderID),
	)
	defer span.End()

	body, err := json.Marshal(chargeRequest{OrderID: orderID, Amount: amount})
	if err != nil {
		return fail(failure.ConnectionError{Code: "ENCODE", Err: err})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chargePath, bytes.NewReader(body))
	if err != nil {
		return fail(failure.ConnectionError{Code: "BAD_REQUEST", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fail(classifyTransport(err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
		span.SetStatus(codes.Error, resp.Status)
		return fail(failure.HTTPResponseError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(excerpt))})
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		span.RecordError(err)
		return fail(failure.HTTPResponseError{StatusCode: resp.StatusCode, Message: "malformed charge response"})
	}

	return decide(orderID, amount, resp.StatusCode, out)
}

func decide(orderID string, amount int64, status int, out chargeResponse) outcome.Outcome[payment.Transaction, failure.Payment] {
	switch out.Decision {
	case payment.DecisionApproved:
		if out.TransactionID == "" {
			return outcome.Failure[payment.Transaction, failure.Payment](failure.HTTPResponseError{StatusCode: status, Message: "approved charge without transaction id"})
		}
		return outcome.Success[payment.Transaction, failure.Payment](payment.Transaction{ID: out.TransactionID, OrderID: orderID, Amount: amount})
	case payment.DecisionInsufficientFunds:
		return outcome.Failure[payment.Transaction, failure.Payment](failure.InsufficientFunds{Message: out.Message})
	case payment.DecisionFraudSuspected:
		return outcome.Failure[payment.Transaction, failure.Payment](failure.FraudSuspected{Message: out.Message})
	default:
		return outcome.Failure[payment.Transaction, failure.Payment](failure.HTTPResponseError{
			StatusCode: status,
			Message:    fmt.Sprintf("unknown decision %q", out.Decision),
		})
	}
}

func classifyTransport(err error) failure.ConnectionError {
	if cerr, ok := failure.FromContext(err); ok {
		return cerr
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return failure.ConnectionError{Code: "ECONNREFUSED", Err: err}
	case errors.Is(err, syscall.ECONNRESET):
		return failure.ConnectionError{Code: "ECONNRESET", Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return failure.ConnectionError{Code: "ENOTFOUND", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failure.ConnectionError{Code: "ETIMEDOUT", Err: err}
	}
	return failure.ConnectionError{Code: "NETWORK", Err: err}
}
