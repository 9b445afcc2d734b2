package psp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
)

func TestClientMakePayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantTx   string
		wantKind failure.Kind
	}{
		{name: "approved", status: 200, body: `{"transaction_id":"t1","decision":"approved"}`, wantTx: "t1"},
		{name: "insufficient funds", status: 200, body: `{"decision":"insufficient_funds","message":"card declined"}`, wantKind: failure.KindInsufficientFunds},
		{name: "fraud", status: 200, body: `{"decision":"fraud_suspected"}`, wantKind: failure.KindFraudSuspected},
		{name: "approved without id", status: 200, body: `{"decision":"approved"}`, wantKind: failure.KindHTTPResponse},
		{name: "unknown decision", status: 200, body: `{"decision":"maybe"}`, wantKind: failure.KindHTTPResponse},
		{name: "malformed", status: 200, body: `not json`, wantKind: failure.KindHTTPResponse},
		{name: "server error", status: 503, body: `upstream unavailable`, wantKind: failure.KindHTTPResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got chargeRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != chargePath || r.Method != http.MethodPost {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := NewClient(srv.URL+"/", nil, nil).MakePayment(context.Background(), "123", 100)

			if got.OrderID != "123" || got.Amount != 100 {
				t.Fatalf("request = %+v", got)
			}
			if tt.wantKind == "" {
				if !res.IsSuccess() {
					t.Fatalf("unexpected failure: %v", res.FailureValue())
				}
				if tx := res.SuccessValue(); tx.ID != tt.wantTx || tx.OrderID != "123" || tx.Amount != 100 {
					t.Fatalf("tx = %+v", tx)
				}
				return
			}
			if f := res.FailureValue(); f.Kind() != tt.wantKind {
				t.Fatalf("kind = %s, want %s", f.Kind(), tt.wantKind)
			}
		})
	}
}

func TestClientHTTPErrorCarriesStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, strings.Repeat("x", 2*maxErrorExcerpt), http.StatusBadGateway)
	}))
	defer srv.Close()

	res := NewClient(srv.URL, nil, nil).MakePayment(context.Background(), "123", 100)
	herr, ok := res.FailureValue().(failure.HTTPResponseError)
	if !ok || herr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 HTTPResponseError, got %#v", res.FailureValue())
	}
	if len(herr.Message) > maxErrorExcerpt {
		t.Fatalf("message not truncated: %d bytes", len(herr.Message))
	}
}

func TestClientConnectionFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewClient(url, nil, nil).MakePayment(context.Background(), "123", 100)
	if f := res.FailureValue(); f.Kind() != failure.KindConnection {
		t.Fatalf("expected connection failure, got %v", f)
	}

	// The body must be read to EOF before net/http notices the client going away.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer func() {
		slow.CloseClientConnections()
		slow.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res = NewClient(slow.URL, nil, nil).MakePayment(ctx, "123", 100)
	conn, ok := res.FailureValue().(failure.ConnectionError)
	if !ok || conn.Code != failure.CodeDeadlineExceeded {
		t.Fatalf("expected deadline connection error, got %#v", res.FailureValue())
	}
}

func TestSimulator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts SimulatorOptions
		want failure.Kind
	}{
		{name: "always approves", opts: SimulatorOptions{SuccessRate: 1, Seed: 1}},
		{name: "always declines", opts: SimulatorOptions{SuccessRate: 0, FraudRate: 0, Seed: 1}, want: failure.KindInsufficientFunds},
		{name: "always fraud", opts: SimulatorOptions{SuccessRate: 0, FraudRate: 1, Seed: 1}, want: failure.KindFraudSuspected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := NewSimulator(tt.opts).MakePayment(context.Background(), "123", 100)
			if tt.want == "" {
				if !res.IsSuccess() || !strings.HasPrefix(res.SuccessValue().ID, "tx_") {
					t.Fatalf("expected approval, got %+v", res)
				}
				return
			}
			if f := res.FailureValue(); f.Kind() != tt.want {
				t.Fatalf("kind = %s, want %s", f.Kind(), tt.want)
			}
		})
	}
}

func TestClientAgainstSimulator(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewSimulator(SimulatorOptions{SuccessRate: 1, Seed: 7}))
	defer srv.Close()

	res := NewClient(srv.URL, nil, nil).MakePayment(context.Background(), "123", 100)
	if !res.IsSuccess() {
		t.Fatalf("unexpected failure: %v", res.FailureValue())
	}
	if tx := res.SuccessValue(); tx.OrderID != "123" || tx.Amount != 100 || tx.ID == "" {
		t.Fatalf("tx = %+v", tx)
	}

	for _, tt := range []struct {
		opts SimulatorOptions
		want failure.Kind
	}{
		{opts: SimulatorOptions{SuccessRate: 0, FraudRate: 1, Seed: 7}, want: failure.KindFraudSuspected},
		{opts: SimulatorOptions{SuccessRate: 0, FraudRate: 0, Seed: 7}, want: failure.KindInsufficientFunds},
	} {
		declining := httptest.NewServer(NewSimulator(tt.opts))
		res := NewClient(declining.URL, nil, nil).MakePayment(context.Background(), "123", 100)
		declining.Close()
		if res.IsSuccess() || res.FailureValue().Kind() != tt.want {
			t.Fatalf("expected %s over http, got %+v", tt.want, res)
		}
	}

	bad, err := http.Post(srv.URL+chargePath, "application/json", strings.NewReader(`{"order_id":""}`))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", bad.StatusCode)
	}
}
