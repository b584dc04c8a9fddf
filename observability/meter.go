package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/iterkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Iterator metric names.
const (
	MetricBatchesProduced = "iterator.batches.produced"
	MetricBatchesConsumed = "iterator.batches.consumed"
	MetricFaults          = "iterator.faults"
	MetricRestarts        = "iterator.restarts"
	MetricWaitDuration    = "iterator.wait.duration"
)

// IteratorMetrics holds the instruments shared by prefetch engines and
// split partitions. Every recording carries the iterator name as the
// "iterator" attribute. A nil *IteratorMetrics records nothing.
type IteratorMetrics struct {
	produced metric.Int64Counter
	consumed metric.Int64Counter
	faults   metric.Int64Counter
	restarts metric.Int64Counter
	wait     metric.Float64Histogram
}

// NewIteratorMetrics creates the iterator instruments on the given meter.
func NewIteratorMetrics(meter metric.Meter) (*IteratorMetrics, error) {
	produced, err := meter.Int64Counter(MetricBatchesProduced,
		metric.WithDescription("Batches pulled from the source by a worker or partition"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricBatchesProduced, err)
	}

	consumed, err := meter.Int64Counter(MetricBatchesConsumed,
		metric.WithDescription("Batches handed to the consumer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricBatchesConsumed, err)
	}

	faults, err := meter.Int64Counter(MetricFaults,
		metric.WithDescription("Producer faults and replay inconsistencies by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricFaults, err)
	}

	restarts, err := meter.Int64Counter(MetricRestarts,
		metric.WithDescription("Epoch restarts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRestarts, err)
	}

	wait, err := meter.Float64Histogram(MetricWaitDuration,
		metric.WithDescription("Time the consumer spent blocked waiting for a batch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricWaitDuration, err)
	}

	return &IteratorMetrics{
		produced: produced,
		consumed: consumed,
		faults:   faults,
		restarts: restarts,
		wait:     wait,
	}, nil
}

func iteratorAttr(name string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(AttrIterator, name))
}

// RecordProduced counts one batch produced by iterator.
func (m *IteratorMetrics) RecordProduced(ctx context.Context, iterator string) {
	if m == nil {
		return
	}
	m.produced.Add(ctx, 1, iteratorAttr(iterator))
}

// RecordConsumed counts one batch delivered to the consumer of iterator.
func (m *IteratorMetrics) RecordConsumed(ctx context.Context, iterator string) {
	if m == nil {
		return
	}
	m.consumed.Add(ctx, 1, iteratorAttr(iterator))
}

// RecordFault counts a failure of iterator, tagged with its error code.
func (m *IteratorMetrics) RecordFault(ctx context.Context, iterator, code string) {
	if m == nil {
		return
	}
	m.faults.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrIterator, iterator),
		attribute.String(AttrCode, code),
	))
}

// RecordRestart counts an epoch restart of iterator.
func (m *IteratorMetrics) RecordRestart(ctx context.Context, iterator string) {
	if m == nil {
		return
	}
	m.restarts.Add(ctx, 1, iteratorAttr(iterator))
}

// RecordWait records how long the consumer of iterator was blocked.
func (m *IteratorMetrics) RecordWait(ctx context.Context, iterator string, d time.Duration) {
	if m == nil {
		return
	}
	m.wait.Record(ctx, d.Seconds(), iteratorAttr(iterator))
}
