package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	// Pipeline
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "generations_total",
			Help:      "Page generations by mode (create|edit) and outcome",
		},
		[]string{"mode", "outcome"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "llm_duration_seconds",
			Help:      "Chat completion latency in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model"},
	)

	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "upstream_errors_total",
			Help:      "Upstream call failures by service and class (transient|permanent)",
		},
		[]string{"service", "class"},
	)

	ModerationRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "moderation_rejections_total",
			Help:      "Prompts rejected by moderation, by category",
		},
		[]string{"category"},
	)

	ModerationFailOpenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "moderation_fail_open_total",
			Help:      "Moderation calls that errored and were allowed through",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP rate limiter",
		},
	)

	ImageFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "image_fallbacks_total",
			Help:      "Image placeholders resolved with the seeded fallback",
		},
	)

	PagesSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "demo",
			Name:      "pages_swept_total",
			Help:      "Expired demo pages deleted by cleanup",
		},
	)
)
