package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// Upstream providers
	ProviderAttempts *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
	SyntheticServed  *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnibot",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "omnibot",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				// Sane initial defaults
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "omnibot",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		ProviderAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnibot",
				Subsystem: "upstream",
				Name:      "provider_attempts_total",
				Help:      "Provider attempts that produced a usable result.",
			},
			[]string{"feature", "provider"},
		),
		ProviderFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnibot",
				Subsystem: "upstream",
				Name:      "provider_failures_total",
				Help:      "Provider attempts that errored or came back empty.",
			},
			[]string{"feature", "provider"},
		),
		SyntheticServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omnibot",
				Subsystem: "upstream",
				Name:      "synthetic_served_total",
				Help:      "Responses served from built-in fallback data.",
			},
			[]string{"feature"},
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.ProviderAttempts, p.ProviderFailures, p.SyntheticServed)

	return p
}

// RecordProviderSuccess and RecordProviderFailure let the fallback chains
// report per-provider outcomes without depending on this package.
func (p *Prom) RecordProviderSuccess(feature, provider string) {
	p.ProviderAttempts.WithLabelValues(feature, provider).Inc()
}

func (p *Prom) RecordProviderFailure(feature, provider string) {
	p.ProviderFailures.WithLabelValues(feature, provider).Inc()
}

func (p *Prom) RecordSynthetic(feature string) {
	p.SyntheticServed.WithLabelValues(feature).Inc()
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
