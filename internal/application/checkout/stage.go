package checkout

// Stage tracks how far a single ReceiveOrder call got. Stages only move
// forward, one at a time; Succeeded and Failed are terminal.
type Stage uint8

const (
	StageStarted Stage = iota
	StageProductResolved
	StageInventoryChecked
	StageOrderCreated
	StagePaymentCaptured
	StagePaymentRecorded
	StageSucceeded
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStarted:
		return "started"
	case StageProductResolved:
		return "product_resolved"
	case StageInventoryChecked:
		return "inventory_checked"
	case StageOrderCreated:
		return "order_created"
	case StagePaymentCaptured:
		return "payment_captured"
	case StagePaymentRecorded:
		return "payment_recorded"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool { return s == StageSucceeded || s == StageFailed }

// Next returns the stage after a successful step.
func (s Stage) Next() Stage {
	if s.Terminal() {
		return s
	}
	return s + 1
}

// Fail moves any non-terminal stage to Failed.
func (s Stage) Fail() Stage {
	if s.Terminal() {
		return s
	}
	return StageFailed
}
