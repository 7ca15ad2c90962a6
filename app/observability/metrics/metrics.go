package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ItineraryRequestsTotal   metric.Int64Counter
	ItineraryDurationSeconds metric.Float64Histogram
	UpstreamCallDurationSecs metric.Float64Histogram
	UpstreamCallErrorsTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TravelPlannerAPI")
		var err error
		m := &AppMetrics{}

		m.ItineraryRequestsTotal, err = meter.Int64Counter(
			"itinerary_requests_total",
			metric.WithDescription("Total number of itinerary generation requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_requests_total: %v", err)
		}

		m.ItineraryDurationSeconds, err = meter.Float64Histogram(
			"itinerary_duration_seconds",
			metric.WithDescription("Duration of itinerary generation requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_duration_seconds: %v", err)
		}

		m.UpstreamCallDurationSecs, err = meter.Float64Histogram(
			"upstream_call_duration_seconds",
			metric.WithDescription("Duration of third-party API calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_call_duration_seconds: %v", err)
		}

		m.UpstreamCallErrorsTotal, err = meter.Int64Counter(
			"upstream_call_errors_total",
			metric.WithDescription("Total number of failed third-party API calls"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_call_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// RecordUpstreamCall records one third-party API call against the
// upstream instruments: duration always, an error count when it failed.
func (m *AppMetrics) RecordUpstreamCall(ctx context.Context, service string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("service", service))
	m.UpstreamCallDurationSecs.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.UpstreamCallErrorsTotal.Add(ctx, 1, attrs)
	}
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics.Get called before InitAppMetrics")
	}
	return appMetrics
}
