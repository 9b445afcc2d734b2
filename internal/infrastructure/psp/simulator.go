package psp

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/outcome"
	"github.com/google/uuid"
)

// SimulatorOptions control the simulated approval mix.
type SimulatorOptions struct {
	SuccessRate float64 // share of charges approved
	FraudRate   float64 // share of declines reported as fraud
	Latency     time.Duration
	Seed        int64 // 0 seeds from the clock
}

// Simulator stands in for a real PSP. It approves a configurable share of
// charges and declines the rest.
type Simulator struct {
	mu     sync.Mutex
	random *rand.Rand
	opts   SimulatorOptions
}

func NewSimulator(opts SimulatorOptions) *Simulator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		random: rand.New(rand.NewSource(seed)),
		opts:   opts,
	}
}

func (s *Simulator) decide() payment.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.random.Float64() < s.opts.SuccessRate {
		return payment.DecisionApproved
	}
	if s.random.Float64() < s.opts.FraudRate {
		return payment.DecisionFraudSuspected
	}
	return payment.DecisionInsufficientFunds
}

func (s *Simulator) MakePayment(ctx context.Context, orderID string, amount int64) outcome.Outcome[payment.Transaction, failure.Payment] {
	if s.opts.Latency > 0 {
		t := time.NewTimer(s.opts.Latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	if cerr, done := failure.FromContext(ctx.Err()); done {
		return outcome.Failure[payment.Transaction, failure.Payment](cerr)
	}

	resp := s.charge(orderID)
	return decide(orderID, amount, http.StatusOK, resp)
}

func (s *Simulator) charge(orderID string) chargeResponse {
	switch d := s.decide(); d {
	case payment.DecisionApproved:
		return chargeResponse{TransactionID: "tx_" + uuid.NewString(), Decision: d}
	case payment.DecisionFraudSuspected:
		return chargeResponse{Decision: d, Message: "charge for " + orderID + " flagged by risk checks"}
	default:
		return chargeResponse{Decision: d, Message: "card declined"}
	}
}

// ServeHTTP exposes the simulator with the same wire format Client expects.
func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != chargePath {
		http.NotFound(w, r)
		return
	}
	var req chargeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || req.OrderID == "" || req.Amount < 0 {
		http.Error(w, "invalid charge request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.charge(req.OrderID))
}
