package payment

// Transaction is a successful PSP capture. It is created by the PSP and never
// changed afterwards.
type Transaction struct {
	ID      string
	OrderID string
	Amount  int64
}

// Decision is the PSP verdict for a charge that reached the PSP.
type Decision string

const (
	DecisionApproved          Decision = "approved"
	DecisionInsufficientFunds Decision = "insufficient_funds"
	DecisionFraudSuspected    Decision = "fraud_suspected"
)
