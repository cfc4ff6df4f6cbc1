// Package metrics holds the OpenTelemetry instruments of the agent and the
// Prometheus-backed meter provider they report through.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

const meterName = "phishguard"

// NewMeterProvider returns a meter provider whose readings are exposed on reg.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Recorder records agent activity. A nil *Recorder records nothing.
type Recorder struct {
	classifications metric.Int64Counter
	predictLatency  metric.Float64Histogram
	batches         metric.Int64Counter
	batchURLs       metric.Int64Histogram
	notifications   metric.Int64Counter
}

// NewRecorder creates the instruments on mp.
func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	m := mp.Meter(meterName)

	classifications, err := m.Int64Counter("phishguard.classifications",
		metric.WithDescription("Classified URLs by deciding stage and verdict kind."))
	if err != nil {
		return nil, fmt.Errorf("could not create classifications counter: %w", err)
	}
	predictLatency, err := m.Float64Histogram("phishguard.predictor.duration",
		metric.WithDescription("Latency of prediction service calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create predictor histogram: %w", err)
	}
	batches, err := m.Int64Counter("phishguard.content.batches",
		metric.WithDescription("Completed content scan batches."))
	if err != nil {
		return nil, fmt.Errorf("could not create batches counter: %w", err)
	}
	batchURLs, err := m.Int64Histogram("phishguard.content.batch_urls",
		metric.WithDescription("Distinct URLs per content scan batch."),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 25, 50, 100))
	if err != nil {
		return nil, fmt.Errorf("could not create batch size histogram: %w", err)
	}
	notifications, err := m.Int64Counter("phishguard.notifications",
		metric.WithDescription("Notifications shown by surface and severity."))
	if err != nil {
		return nil, fmt.Errorf("could not create notifications counter: %w", err)
	}

	return &Recorder{
		classifications: classifications,
		predictLatency:  predictLatency,
		batches:         batches,
		batchURLs:       batchURLs,
		notifications:   notifications,
	}, nil
}

// Classification counts one verdict produced by stage.
func (r *Recorder) Classification(ctx context.Context, stage, kind string) {
	if r == nil {
		return
	}
	r.classifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("verdict", kind),
	))
}

// PredictorCall records the latency of one prediction service call.
func (r *Recorder) PredictorCall(ctx context.Context, d time.Duration, failed bool) {
	if r == nil {
		return
	}
	r.predictLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("failed", failed)))
}

// Batch records one finished content scan batch.
func (r *Recorder) Batch(ctx context.Context, urls, phishing int) {
	if r == nil {
		return
	}
	r.batches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("phishing", phishing > 0)))
	r.batchURLs.Record(ctx, int64(urls))
}

// Notification counts one shown notification.
func (r *Recorder) Notification(ctx context.Context, surface, severity string) {
	if r == nil {
		return
	}
	r.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("surface", surface),
		attribute.String("severity", severity),
	))
}
