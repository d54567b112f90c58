package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics defines the interface for recording business operation metrics.
// Operations are grouped by domain ("offboarding", "identity", "intent") so dashboards
// can follow the workflow without per-request cardinality.
type BusinessMetrics interface {
	// RecordOperation records a business operation with its status ("success" or "error").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of a business operation in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordStageTransition counts a workflow move between two stages. Kind is one of the
	// Transition constants.
	RecordStageTransition(ctx context.Context, from, to, kind string)

	// RecordEffectFailure counts a failed non-critical side effect (notification, talent pool seeding).
	RecordEffectFailure(ctx context.Context, effect string)
}

// Stage transition kinds.
const (
	TransitionManual      = "manual"
	TransitionAutoAdvance = "auto_advance"
	TransitionReturn      = "return"
	TransitionCancel      = "cancel"
)

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
type businessMetrics struct {
	operationCounter  metric.Int64Counter
	durationHisto     metric.Float64Histogram
	transitionCounter metric.Int64Counter
	effectFailures    metric.Int64Counter
}

// NewBusinessMetrics creates a new BusinessMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for all metric names (e.g., "exitflow").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	transitionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_stage_transitions_total", namespace),
		metric.WithDescription("Total number of offboarding stage transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage transition counter: %w", err)
	}

	effectFailures, err := meter.Int64Counter(
		fmt.Sprintf("%s_effect_failures_total", namespace),
		metric.WithDescription("Total number of failed non-critical side effects"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create effect failure counter: %w", err)
	}

	return &businessMetrics{
		operationCounter:  operationCounter,
		durationHisto:     durationHisto,
		transitionCounter: transitionCounter,
		effectFailures:    effectFailures,
	}, nil
}

// RecordOperation increments the operation counter with domain, operation, and status labels.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration in seconds with domain, operation, and status labels.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordStageTransition increments the transition counter with from, to, and kind labels.
func (b *businessMetrics) RecordStageTransition(ctx context.Context, from, to, kind string) {
	b.transitionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
			attribute.String("kind", kind),
		),
	)
}

// RecordEffectFailure increments the effect failure counter.
func (b *businessMetrics) RecordEffectFailure(ctx context.Context, effect string) {
	b.effectFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("effect", effect)))
}

// NoOpBusinessMetrics is a no-op implementation of BusinessMetrics for when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordStageTransition does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordStageTransition(ctx context.Context, from, to, kind string) {}

// RecordEffectFailure does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordEffectFailure(ctx context.Context, effect string) {}
