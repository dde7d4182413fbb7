package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikibeerdia_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// Signups counts account registrations by result (created|rejected|error).
	Signups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikibeerdia_signups_total",
			Help: "Total number of signup attempts",
		},
		[]string{"result"},
	)

	// EmailVerifications counts verification attempts by outcome (verified|invalid).
	EmailVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikibeerdia_email_verifications_total",
			Help: "Total number of email verification attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wikibeerdia_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
