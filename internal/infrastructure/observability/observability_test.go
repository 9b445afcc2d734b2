package observability

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewFallsBackToNop(t *testing.T) {
	t.Parallel()

	tel := New(nil, nil, nil, nil)

	// None of these may panic.
	tel.Logger().Info("hello")
	ctx, span := tel.Tracer().Start(context.Background(), "x")
	span.End()
	if ctx == nil {
		t.Fatal("expected context")
	}
	tel.Metrics().Counter("missing").Add(1)
	tel.Metrics().Histogram("missing").Bind().Observe(1)
}

func TestNewWithRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	tel := NewWithRegistry(nil, nil, prometrics.New(reg, "", ""))

	tel.Metrics().Counter(observability.MUsecaseRequests).Add(1,
		observability.L("use_case", "checkout.receive_order"),
		observability.L("outcome", "success"),
	)

	if n, err := testutil.GatherAndCount(reg, string(observability.MUsecaseRequests)); err != nil || n != 1 {
		t.Fatalf("expected 1 series, got %d (err=%v)", n, err)
	}
}
