// Package kafka ships domain events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerEvent       = "event"
	headerContentType = "content-type"
)

// Writer is the part of *kafkago.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter returns a writer that hashes message keys so events of one order
// land on one partition.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

type Publisher struct {
	writer Writer
	topic  string
	tracer observability.Tracer
}

func NewPublisher(w Writer, topic string, tracer observability.Tracer) *Publisher {
	if w == nil {
		panic("kafka: nil writer")
	}
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	return &Publisher{writer: w, topic: topic, tracer: tracer}
}

// Publish writes e as JSON keyed by its aggregate id. The W3C trace context
// travels in the message headers.
func (p *Publisher) Publish(ctx context.Context, e outbox.Event) (err error) {
	ctx, span := p.tracer.Start(ctx, "Kafka.Produce",
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("messaging.kafka.message.key", e.Key()),
		attribute.String("event.name", e.EventName()),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", e.EventName(), err)
	}

	msg := kafkago.Message{
		Key:   []byte(e.Key()),
		Value: value,
		Headers: append([]kafkago.Header{
			{Key: headerEvent, Value: []byte(e.EventName())},
			{Key: headerContentType, Value: []byte("application/json")},
		}, traceHeaders(ctx)...),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s to %s: %w", e.EventName(), p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("kafka: close writer: %w", err)
	}
	return nil
}

func traceHeaders(ctx context.Context) []kafkago.Header {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return nil
	}
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)

	headers := make([]kafkago.Header, 0, len(carrier))
	for _, k := range carrier.Keys() {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(carrier.Get(k))})
	}
	return headers
}
