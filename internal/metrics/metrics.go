package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Solve metrics
	SolveRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_solve_requests_total",
			Help: "Total number of order solve calls",
		},
		[]string{"strategy", "status"},
	)

	SolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spread_solve_duration_seconds",
			Help:    "Order solve duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// Routing metrics
	RoutesEvaluated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_routes_evaluated",
		Help:    "Number of candidate routes simulated per solve call",
		Buckets: []float64{1, 2, 3, 5, 10, 20},
	})

	RoutesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spread_routes_skipped_total",
		Help: "Candidate routes skipped due to bad pool data",
	})

	SplitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spread_split_duration_seconds",
		Help:    "Two-route volume split optimization duration in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02},
	})

	OptimizerFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spread_optimizer_fallbacks_total",
		Help: "Split optimizations that fell back to a single route",
	})

	ConservationViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spread_conservation_violations_total",
		Help: "Token conservation check failures",
	})

	// Batch metrics
	BatchOrders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_batch_orders_total",
			Help: "Orders processed in batch solves",
		},
		[]string{"status"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spread_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spread_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
