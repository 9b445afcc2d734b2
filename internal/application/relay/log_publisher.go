package relay

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
)

// LogPublisher is the downstream used when no broker is configured. It only
// records that the event would have been shipped.
type LogPublisher struct {
	log observability.Logger
}

func NewLogPublisher(logger observability.Logger) *LogPublisher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogPublisher{log: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e domoutbox.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logctx.FromOr(ctx, p.log).Info("event_logged",
		observability.F("event", e.EventName()),
		observability.F("key", e.Key()),
	)
	return nil
}
