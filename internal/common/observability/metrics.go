package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability holds the OpenTelemetry instruments of the career graph.
// A nil *Observability is valid and records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter

	jobCounter  otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
	cacheHits   otelmetric.Int64Counter
	cacheMisses otelmetric.Int64Counter
	shortlisted otelmetric.Int64Counter
}

// New registers a Prometheus exporter on the default registerer and installs
// the meter provider globally.
func New(serviceName string) (*Observability, error) {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
}

// NewWithRegisterer is New with an explicit Prometheus registerer.
func NewWithRegisterer(serviceName string, reg promclient.Registerer) (*Observability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	o, err := newWithReader(serviceName, exporter)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(o.meterProvider)
	return o, nil
}

func newWithReader(serviceName string, reader metric.Reader) (*Observability, error) {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	o := &Observability{meterProvider: provider, meter: meter}

	var err error
	if o.jobCounter, err = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of agent jobs processed"),
	); err != nil {
		return nil, err
	}
	if o.jobDuration, err = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Agent job processing duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if o.cacheHits, err = meter.Int64Counter(
		"cache.hits",
		otelmetric.WithDescription("Total Redis cache hits"),
	); err != nil {
		return nil, err
	}
	if o.cacheMisses, err = meter.Int64Counter(
		"cache.misses",
		otelmetric.WithDescription("Total Redis cache misses"),
	); err != nil {
		return nil, err
	}
	if o.shortlisted, err = meter.Int64Counter(
		"ats.shortlisted",
		otelmetric.WithDescription("Number of candidates with ATS score above 80"),
	); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordCacheHit counts a hit for a cache namespace such as "ats_v1".
func (o *Observability) RecordCacheHit(ctx context.Context, namespace string) {
	if o == nil {
		return
	}
	o.cacheHits.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("cache", namespace)))
}

func (o *Observability) RecordCacheMiss(ctx context.Context, namespace string) {
	if o == nil {
		return
	}
	o.cacheMisses.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("cache", namespace)))
}

func (o *Observability) RecordShortlisted(ctx context.Context, jobTitle string) {
	if o == nil {
		return
	}
	o.shortlisted.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("job_title", jobTitle)))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
