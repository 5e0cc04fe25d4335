// Package promstats exposes the monitoring service's Prometheus
// collectors: per-business request, latency, token, cost, and business
// signal metrics derived from incoming AIMetric records.
package promstats

import (
	"github.com/apptly/aimetrics/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unknownLabel = "unknown"

// Collectors holds the AI metrics collectors registered on one registry.
type Collectors struct {
	requestsTotal   *prometheus.CounterVec
	responseTime    *prometheus.HistogramVec
	tokensUsedTotal *prometheus.CounterVec
	apiCostTotal    *prometheus.CounterVec
	appointments    *prometheus.CounterVec
	humanHandoffs   *prometheus.CounterVec
}

// New creates and registers the collectors on the given registerer.
// Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Collectors {
	return &Collectors{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Total AI requests",
			},
			[]string{"business_id", "intent", "response_type"},
		),
		responseTime: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_response_time_seconds",
				Help:    "AI response time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"business_id"},
		),
		tokensUsedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_tokens_used_total",
				Help: "Total tokens used",
			},
			[]string{"business_id", "model"},
		),
		apiCostTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_api_cost_usd_total",
				Help: "Total API cost in USD",
			},
			[]string{"business_id"},
		),
		appointments: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "appointments_requested_total",
				Help: "Total appointment requests",
			},
			[]string{"business_id"},
		),
		humanHandoffs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "human_handoffs_total",
				Help: "Total human handoff requests",
			},
			[]string{"business_id"},
		),
	}
}

// Observe updates every collector from one metrics record.
func (c *Collectors) Observe(metric *models.AIMetric) {
	businessID := orUnknown(metric.BusinessID)

	c.requestsTotal.WithLabelValues(
		businessID,
		orUnknown(metric.IntentDetected),
		orUnknown(metric.ResponseType),
	).Inc()

	c.responseTime.WithLabelValues(businessID).
		Observe(float64(metric.ResponseTimeMs) / 1000.0)

	c.tokensUsedTotal.WithLabelValues(businessID, metric.Model()).
		Add(float64(metric.TokensUsed))

	c.apiCostTotal.WithLabelValues(businessID).
		Add(metric.APICostUSD)

	if metric.AppointmentRequested {
		c.appointments.WithLabelValues(businessID).Inc()
	}
	if metric.HumanHandoffRequested {
		c.humanHandoffs.WithLabelValues(businessID).Inc()
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknownLabel
	}
	return s
}
