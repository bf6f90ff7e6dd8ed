package api

import (
	"net/http"

	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several routers can coexist in tests.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	quotesPriced    *prometheus.CounterVec
	quoteTotals     prometheus.Histogram
	quotesSaved     prometheus.Counter
	validationFails prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tinybar",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tinybar",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		quotesPriced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tinybar",
			Name:      "quotes_priced_total",
			Help:      "Quotes priced by event type and service level.",
		}, []string{"event_type", "service_level"}),
		quoteTotals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tinybar",
			Name:      "quote_total_mxn",
			Help:      "Distribution of quoted totals in pesos.",
			Buckets:   prometheus.ExponentialBuckets(10000, 1.5, 10),
		}),
		quotesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tinybar",
			Name:      "quotes_saved_total",
			Help:      "Quotes stored as pending.",
		}),
		validationFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tinybar",
			Name:      "quote_validation_failures_total",
			Help:      "Requests rejected by quote validation.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.quotesPriced,
		m.quoteTotals,
		m.quotesSaved,
		m.validationFails,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observePriced(in pricing.QuoteInput, b *pricing.PricingBreakdown) {
	m.quotesPriced.WithLabelValues(string(in.EventType), string(in.ServiceLevel)).Inc()
	m.quoteTotals.Observe(float64(b.Total))
}
