package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They are no-ops until InitMetrics runs.
var (
	opsCounter        metric.Int64Counter     = noop.Int64Counter{}
	opsHistogram      metric.Float64Histogram = noop.Float64Histogram{}
	errorCounter      metric.Int64Counter     = noop.Int64Counter{}
	paymentGauge      metric.Float64Gauge     = noop.Float64Gauge{}
	conversionCounter metric.Int64Counter     = noop.Int64Counter{}
)

// InitMetrics registers the mortgage and currency instruments on the global
// meter provider. Call once at startup, after observability.InitTelemetry.
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("mortgage.calculations.total",
		metric.WithDescription("Total number of mortgage calculations performed"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("mortgage.calculation.duration",
		metric.WithDescription("Duration of mortgage calculations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of failed mortgage and currency requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	paymentGauge, err = meter.Float64Gauge("mortgage.last_monthly_payment",
		metric.WithDescription("Monthly payment of the last calculated loan, in the loan currency"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating payment gauge: %w", err)
	}

	conversionCounter, err = meter.Int64Counter("currency.conversions.total",
		metric.WithDescription("Total number of currency conversions"),
		metric.WithUnit("{conversion}"),
	)
	if err != nil {
		return fmt.Errorf("creating conversion counter: %w", err)
	}

	return nil
}
