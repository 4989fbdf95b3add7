// Package observe holds the service's OpenTelemetry metric instruments and
// the HTTP middleware that records request latency.
//
// Instruments are exported through a Prometheus bridge (see [InitProvider])
// and scraped from /metrics. Tests should build their own [Metrics] with
// [NewMetrics] and a ManualReader-backed provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/kozaktomas/face-recognition"

// Decision outcomes recorded on [Metrics.Decisions].
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
	OutcomeNoFace  = "no_face"
	OutcomeError   = "error"

	OutcomeRegistered = "registered"
)

// Metrics holds all metric instruments. Safe for concurrent use.
type Metrics struct {
	// ExtractionDuration tracks time spent in the embedding extractor, by backend.
	ExtractionDuration metric.Float64Histogram

	// Decisions counts verification/comparison/registration outcomes. Attributes:
	//   attribute.String("operation", ...), attribute.String("outcome", ...)
	Decisions metric.Int64Counter

	// DecisionDistance records the distance a decision was based on, by operation.
	DecisionDistance metric.Float64Histogram

	// HTTPRequestDuration tracks request latency by method, route and status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// distanceBuckets straddle both decision thresholds (0.45 and 0.6).
var distanceBuckets = []float64{
	0.1, 0.2, 0.3, 0.4, 0.45, 0.5, 0.6, 0.7, 0.8, 1.0, 1.5,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ExtractionDuration, err = m.Float64Histogram("face.extraction.duration",
		metric.WithDescription("Latency of face detection and embedding extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Decisions, err = m.Int64Counter("face.decisions",
		metric.WithDescription("Face decisions by operation and outcome."),
	); err != nil {
		return nil, err
	}
	if met.DecisionDistance, err = m.Float64Histogram("face.decision.distance",
		metric.WithDescription("Euclidean distance behind each decision."),
		metric.WithExplicitBucketBoundaries(distanceBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("face.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a process-wide instance bound to the global meter provider.
// Call it after [InitProvider] so instruments reach the Prometheus exporter.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordDecision counts a decision and, unless it had no usable face, records its distance.
func (m *Metrics) RecordDecision(ctx context.Context, operation, outcome string, distance float64) {
	m.Decisions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		),
	)
	if outcome == OutcomeMatch || outcome == OutcomeNoMatch {
		m.DecisionDistance.Record(ctx, distance,
			metric.WithAttributes(attribute.String("operation", operation)),
		)
	}
}

// RecordExtraction records how long the extractor took.
func (m *Metrics) RecordExtraction(ctx context.Context, backend string, seconds float64) {
	m.ExtractionDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}

// Outcome maps a boolean decision to its outcome label.
func Outcome(match bool) string {
	if match {
		return OutcomeMatch
	}
	return OutcomeNoMatch
}
