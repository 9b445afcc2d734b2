package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	"github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
)

const (
	componentHTTPHandler = "http_server"
	maxBodyBytes         = 1 << 20
	msgInvalidRequest    = "Invalid request"
)

var errInvalidRequest = errors.New(msgInvalidRequest)

// OrderReader loads stored orders for the read endpoint.
type OrderReader interface {
	Get(ctx context.Context, id string) (*order.Order, error)
}

type Handler struct {
	checkout application.UseCase[checkout.Request, checkout.Result]
	orders   OrderReader
	log      observability.Logger
	tel      observability.Observability
	timeout  time.Duration
}

// NewHandler wires the checkout use case. orders may be nil, in which case the
// order read endpoint is not mounted. timeout bounds each request; zero
// disables it.
func NewHandler(uc application.UseCase[checkout.Request, checkout.Result], orders OrderReader,
	tel observability.Observability, timeout time.Duration,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		checkout: uc,
		orders:   orders,
		log:      tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:      tel,
		timeout:  timeout,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.muxHandle(mux, http.MethodPost, "/api/payment", h.handlePayment)
	if h.orders != nil {
		h.muxHandle(mux, http.MethodGet, "/api/orders/{id}", h.handleGetOrder)
	}
	mux.HandleFunc("GET /health", h.handleHealth)

	return mux
}

// muxHandle wires a route with Trace → Request Logger → Metrics → Access Log → Timeout → Handler.
func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	chain := withTrace(
		ObservabilityMiddleware(h.log,
			func(r *http.Request) string { return r.Header.Get(headerRequestID) },
			h.tel,
		)(
			withHTTPMetrics(h.tel,
				withAccessLog(h.log,
					withTimeout(h.timeout, handler),
				),
			),
		),
	)

	mux.Handle(method+" "+route, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stable route template for low-cardinality labels
		chain.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), route)))
	}))
}

type customerPayload struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type productPayload struct {
	ProductID *string `json:"productId"`
	Name      *string `json:"name"`
	Price     *int64  `json:"price"`
}

// paymentRequest accepts either a product id or a fully resolved product.
// Pointers tell a missing field from a zero value.
type paymentRequest struct {
	ProductID *string          `json:"productId"`
	Product   *productPayload  `json:"product"`
	Customer  *customerPayload `json:"customer"`
}

func (p paymentRequest) toRequest() (checkout.Request, error) {
	c := p.Customer
	if c == nil || c.Name == nil || c.Email == nil || c.Address == nil {
		return checkout.Request{}, errInvalidRequest
	}
	req := checkout.Request{
		Customer: order.Customer{Name: *c.Name, Email: *c.Email, Address: *c.Address},
	}

	switch {
	case p.ProductID != nil && p.Product == nil:
		req.ProductID = *p.ProductID
	case p.Product != nil && p.ProductID == nil:
		pp := p.Product
		if pp.ProductID == nil || pp.Name == nil || pp.Price == nil {
			return checkout.Request{}, errInvalidRequest
		}
		req.Product = &product.Product{ID: *pp.ProductID, Name: *pp.Name, Price: *pp.Price}
	default:
		return checkout.Request{}, errInvalidRequest
	}

	if err := req.Validate(); err != nil {
		return checkout.Request{}, errors.Join(errInvalidRequest, err)
	}
	return req, nil
}

type productResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
}

type paymentResponse struct {
	OrderID       string          `json:"orderId"`
	TransactionID string          `json:"transactionId"`
	Product       productResponse `json:"product"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logctx.FromOr(ctx, h.log)

	var body paymentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		logger.Info("invalid_request", observability.F("error", err))
		writeJSON(w, http.StatusBadRequest, messageResponse{Msg: msgInvalidRequest})
		return
	}
	req, err := body.toRequest()
	if err != nil {
		logger.Info("invalid_request", observability.F("error", err))
		writeJSON(w, http.StatusBadRequest, messageResponse{Msg: msgInvalidRequest})
		return
	}

	res := h.checkout.Execute(ctx, req)
	verdict := Classify(res)

	if res.IsFailure() {
		f := res.FailureValue()
		observability.Log(logger, verdict.Level, verdict.Event,
			observability.F("status", verdict.Status),
			observability.F("failure", f),
		)
		writeJSON(w, verdict.Status, messageResponse{Msg: verdict.Message})
		return
	}

	conf := res.SuccessValue()
	observability.Log(logger, verdict.Level, verdict.Event,
		observability.F("order_id", conf.OrderID),
		observability.F("transaction_id", conf.TransactionID),
		observability.F("product_id", conf.Product.ID),
	)
	writeJSON(w, verdict.Status, paymentResponse{
		OrderID:       conf.OrderID,
		TransactionID: conf.TransactionID,
		Product:       productResponse{ProductID: conf.Product.ID, Name: conf.Product.Name, Price: conf.Product.Price},
	})
}

type orderResponse struct {
	OrderID       string         `json:"orderId"`
	ProductID     string         `json:"productId"`
	Price         int64          `json:"price"`
	Status        order.Status   `json:"status"`
	TransactionID string         `json:"transactionId,omitempty"`
	Customer      order.Customer `json:"customer"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Msg: "Order not found"})
		return
	case err != nil:
		logctx.FromOr(r.Context(), h.log).Error("get_order_failed", observability.F("error", err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Msg: msgInternal})
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		Price:         o.Price,
		Status:        o.Status,
		TransactionID: o.TransactionID,
		Customer:      o.Customer,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
