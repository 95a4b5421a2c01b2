package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultServiceName = "property-listings-api"

// ServiceName is OTEL_SERVICE_NAME or the default service name.
func ServiceName() string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return defaultServiceName
}

// Shutdown flushes and stops whatever providers were started.
type Shutdown func(context.Context) error

// InitTelemetry installs global OTLP trace and meter providers and tees
// Logger into an OTLP log exporter. Exporter endpoints come from the
// standard OTEL_EXPORTER_OTLP_* variables. Call after InitLogger. Domain
// instruments must be created after this returns.
func InitTelemetry(ctx context.Context) (Shutdown, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(ServiceName())),
	)
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	var stops []Shutdown
	shutdown := func(ctx context.Context) error {
		var errs []error
		// Reverse order so the logger provider flushes first.
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i](ctx))
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (Shutdown, error) {
		return nil, errors.Join(err, shutdown(ctx))
	}

	traceExporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return fail(fmt.Errorf("creating trace exporter: %w", err))
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	stops = append(stops, tracerProvider.Shutdown)

	// Portal proxy requests carry the trace to the upstream API.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return fail(fmt.Errorf("creating metric exporter: %w", err))
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	otel.SetMeterProvider(meterProvider)
	stops = append(stops, meterProvider.Shutdown)

	logExporter, err := otlploghttp.New(ctx)
	if err != nil {
		return fail(fmt.Errorf("creating log exporter: %w", err))
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	stops = append(stops, loggerProvider.Shutdown)

	Logger = teeLogger(Logger, otelzap.NewCore(ServiceName(), otelzap.WithLoggerProvider(loggerProvider)))

	return shutdown, nil
}

// teeLogger also writes l's entries to core, keeping l's caller and
// stack trace options.
func teeLogger(l *zap.Logger, core zapcore.Core) *zap.Logger {
	return l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, core)
	}))
}

// PrometheusHandler serves the default Prometheus registry (Go runtime and
// rate cache counters).
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
