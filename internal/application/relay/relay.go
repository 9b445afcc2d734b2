// Package relay forwards domain events from the in-process bus to a
// downstream publisher such as Kafka.
package relay

import (
	"context"
	"fmt"
	"time"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	relayService   = "event-relay"
	useCaseForward = "relay.forward"
	spanPrefix     = "UC."
)

// Events lists the event names the relay forwards.
var Events = []string{domorder.PaidEvent{}.EventName()}

type Relay struct {
	downstream domoutbox.Publisher
	tel        observability.Observability

	log            observability.Logger
	reqCounter     observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram   observability.Histogram // usecase_duration_seconds{use_case}
	relayedCounter observability.Counter   // events_relayed_total{event,outcome}
}

func New(downstream domoutbox.Publisher, tel observability.Observability) *Relay {
	if downstream == nil {
		panic("relay.New: nil downstream publisher")
	}
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return &Relay{
		downstream:     downstream,
		tel:            tel,
		log:            tel.Logger().With(observability.F("service", relayService)),
		reqCounter:     m.Counter(observability.MUsecaseRequests),
		durHistogram:   m.Histogram(observability.MUsecaseDuration),
		relayedCounter: m.Counter(observability.MEventsRelayed),
	}
}

// Subscribe registers the relay for every forwarded event. wrap, when not
// nil, decorates the handler (e.g. with an event-scoped logger).
func (r *Relay) Subscribe(sub domoutbox.Subscriber, wrap func(useCase string, h domoutbox.Handler) domoutbox.Handler) {
	h := domoutbox.Handler(r.Forward)
	if wrap != nil {
		h = wrap(useCaseForward, h)
	}
	for _, name := range Events {
		sub.Subscribe(name, h)
	}
}

// Forward hands one event to the downstream publisher. Errors are returned to
// the bus, which logs them; the event is not retried.
func (r *Relay) Forward(ctx context.Context, e domoutbox.Event) (err error) {
	ctx, span := r.tel.Tracer().Start(ctx, spanPrefix+"RelayEvent",
		attribute.String("use_case", useCaseForward),
		attribute.String("event", e.EventName()),
		attribute.String("event.key", e.Key()),
	)
	start := time.Now()
	outcome, status := "success", "OK"

	logger := logctx.FromOr(ctx, r.log).With(
		observability.F("use_case", useCaseForward),
		observability.F("event", e.EventName()),
	)

	defer func() {
		lat := time.Since(start).Seconds()
		r.reqCounter.Add(1,
			observability.L("use_case", useCaseForward),
			observability.L("outcome", outcome),
		)
		r.durHistogram.Observe(lat, observability.L("use_case", useCaseForward))
		r.relayedCounter.Add(1,
			observability.L("event", e.EventName()),
			observability.L("outcome", outcome),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", status),
			observability.F("key", e.Key()),
			observability.F("latency_seconds", lat),
		}
		fields = append(fields, logctx.TraceFields(ctx)...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, status)
			fields = append(fields, observability.F("error", err.Error()))
		} else {
			span.SetStatus(codes.Ok, status)
		}
		span.End()
		logger.Info("use_case_done", fields...)
	}()

	if err := r.downstream.Publish(ctx, e); err != nil {
		outcome, status = "error", "DOWNSTREAM_PUBLISH_FAILED"
		return fmt.Errorf("relay: publish %s: %w", e.EventName(), err)
	}
	return nil
}
