package workerpresentation

import (
	"context"
	"testing"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type paid struct{}

func (paid) EventName() string { return "order.paid" }
func (paid) Key() string       { return "o-1" }

func TestHandlerInjectsEventLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	base := zaplogger.Wrap(zap.New(core))

	h := Handler(base, observability.Nop(), "relay.forward", func(ctx context.Context, _ domoutbox.Event) error {
		logctx.From(ctx).Info("handled")
		return nil
	})
	if err := h(context.Background(), paid{}); err != nil {
		t.Fatalf("handler: %v", err)
	}

	entries := logs.FilterMessage("handled").All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event"] != "order.paid" || fields["aggregate_id"] != "o-1" || fields["use_case"] != "relay.forward" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if id, _ := fields["event_id"].(string); id == "" {
		t.Fatal("event_id should be generated")
	}
	if _, ok := fields["trace_id"]; ok {
		t.Fatal("no trace_id expected without a span")
	}
}
