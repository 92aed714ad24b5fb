// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
//
// Labels never carry visitor input; form and field names come from the
// built-in definitions only.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Submit attempts by form and outcome (accepted, invalid, rate_limited, failed, not_configured, busy).",
		}, []string{"form", "outcome"})

	ValidationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_validation_errors_total",
			Help: "Field-level validation failures by form and field.",
		}, []string{"form", "field"})

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_rate_limited_total",
			Help: "Submit attempts refused by the rate limiter.",
		}, []string{"form"})

	WebhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_request_duration_seconds",
			Help:    "Latency of outbound webhook calls by webhook and outcome.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"webhook", "outcome"})

	BotRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_requests_total",
			Help: "Form posts whose User-Agent parsed as a bot.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ValidationErrorsTotal,
		RateLimitedTotal,
		WebhookDuration,
		BotRequestsTotal,
	)
}
