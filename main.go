package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-checkout/internal/application/relay"
	"github.com/Zhima-Mochi/minishop-checkout/internal/config"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/kafka"
	infraobs "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-checkout/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-checkout/internal/presentation/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; the config decides where logs go.
		zap.NewExample().Fatal("config_invalid", zap.Error(err))
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	if err := run(cfg, baseLogger); err != nil {
		baseLogger.Error("service_stopped_with_error", zap.Error(err))
		_ = baseLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, baseLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	systemLogger := zaplogger.Wrap(baseLogger, observability.F("component", "system"))

	shutdownTracer, err := oteltrace.InitProvider(cfg.ServiceName, cfg.Env, cfg.JaegerEndpoint)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tel := infraobs.NewWithRegistry(
		oteltrace.New(cfg.ServiceName),
		zaplogger.Wrap(baseLogger),
		prometrics.New(reg, "", ""),
	)

	be, err := buildBackends(ctx, cfg, tel.Tracer(), systemLogger)
	if err != nil {
		return err
	}

	// In-memory bus between the checkout and the relay worker
	bus := outbox.NewBus(tel.Logger(), outbox.Options{})
	bus.Start(ctx)

	var downstream domoutbox.Publisher = relay.NewLogPublisher(tel.Logger())
	var kafkaPublisher *kafka.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher = kafka.NewPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), cfg.Kafka.Topic, tel.Tracer())
		downstream = kafkaPublisher
	}
	relay.New(downstream, tel).Subscribe(bus, func(useCase string, h domoutbox.Handler) domoutbox.Handler {
		return workerpresentation.Handler(tel.Logger(), tel, useCase, h)
	})

	pipeline := checkout.NewPipeline(be.connectors, bus, tel)
	handler := httppresentation.NewHandler(pipeline, be.orders, tel, cfg.HTTP.RequestTimeout)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("catalog_driver", cfg.CatalogDriver),
			observability.F("inventory_driver", cfg.InventoryDriver),
			observability.F("psp_driver", cfg.PSP.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		// HTTP first so no new checkouts publish, then drain the bus.
		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := bus.Stop(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if kafkaPublisher != nil {
			errs = append(errs, kafkaPublisher.Close())
		}
		errs = append(errs, be.close(), shutdownTracer(shutdownCtx))

		if err := errors.Join(errs...); err != nil {
			systemLogger.Error("shutdown_error", observability.F("error", err))
			return err
		}
		systemLogger.Info("http_server_stopped")
		return nil
	})

	return g.Wait()
}
