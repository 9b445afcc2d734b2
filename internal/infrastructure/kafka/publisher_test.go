package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headerMap(msg kafkago.Message) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func paidEvent() order.PaidEvent {
	return order.PaidEvent{
		OrderID:       "123",
		ProductID:     "p1",
		TransactionID: "t1",
		Amount:        100,
		CustomerEmail: "ada@example.com",
		OccurredAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPublish(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := NewPublisher(w, "orders", nil)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	if err := p.Publish(ctx, paidEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(w.msgs))
	}

	msg := w.msgs[0]
	if string(msg.Key) != "123" {
		t.Fatalf("key = %q", msg.Key)
	}
	var got order.PaidEvent
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	want := paidEvent()
	if !got.OccurredAt.Equal(want.OccurredAt) {
		t.Fatalf("occurred_at = %v", got.OccurredAt)
	}
	got.OccurredAt = want.OccurredAt
	if got != want {
		t.Fatalf("value = %+v", got)
	}

	h := headerMap(msg)
	if h["event"] != "order.paid" {
		t.Fatalf("event header = %q", h["event"])
	}
	if !strings.Contains(h["traceparent"], traceID.String()) {
		t.Fatalf("traceparent = %q", h["traceparent"])
	}
}

func TestPublishWithoutTrace(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	if err := NewPublisher(w, "orders", nil).Publish(context.Background(), paidEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, ok := headerMap(w.msgs[0])["traceparent"]; ok {
		t.Fatal("traceparent set without an active span")
	}
}

func TestPublishWriteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("leader not available")
	w := &fakeWriter{err: boom}
	p := NewPublisher(w, "orders", nil)

	err := p.Publish(context.Background(), paidEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("close: %v (closed=%v)", err, w.closed)
	}
}
