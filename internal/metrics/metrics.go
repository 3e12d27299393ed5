package metrics

import (
	"net/http"

	"go-pos-backoffice/internal/offers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos_backoffice"

// Offer decision labels. A rejected decision uses the offers.Reason as outcome.
const (
	ModePreview     = "preview"
	ModeRedeem      = "redeem"
	OutcomeAccepted = "accepted"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	OfferDecisions *prometheus.CounterVec
	OfferSavings   prometheus.Counter
	RecipePricings *prometheus.CounterVec
}

// NewServerMetrics builds the collectors on a private registry so that tests
// can create as many as they like.
func NewServerMetrics() *ServerMetrics {
	m := &ServerMetrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		OfferDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "decisions_total",
			Help:      "Offer validations by mode (preview, redeem) and outcome.",
		}, []string{"mode", "outcome"}),
		OfferSavings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "savings_total",
			Help:      "Sum of discounts granted by redeemed offers.",
		}),
		RecipePricings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recipes",
			Name:      "pricings_total",
			Help:      "Recipe cost calculations by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.LatencyMS,
		m.OfferDecisions,
		m.OfferSavings,
		m.RecipePricings,
	)

	// every decision series is exported from the start, so rate() sees a
	// rejection reason the first time it happens
	for _, mode := range []string{ModePreview, ModeRedeem} {
		m.OfferDecisions.WithLabelValues(mode, OutcomeAccepted)
		for _, reason := range offers.Reasons {
			m.OfferDecisions.WithLabelValues(mode, string(reason))
		}
	}
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
