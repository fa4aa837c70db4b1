package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "merovote_api_request_duration_seconds",
			Help:    "Duration of requests to the remote poll API in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)

	APIRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merovote_api_requests_total",
			Help: "Total number of requests to the remote poll API",
		},
		[]string{"operation", "status"},
	)

	VoteOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merovote_vote_outcomes_total",
			Help: "Total number of vote attempts by outcome",
		},
		[]string{"outcome"},
	)

	CommentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merovote_comment_operations_total",
			Help: "Total number of comment and reaction operations",
		},
		[]string{"operation", "status"},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merovote_cache_operations_total",
			Help: "Total number of snapshot cache operations",
		},
		[]string{"operation", "status"},
	)

	DashboardRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "merovote_dashboard_request_duration_seconds",
			Help:    "Duration of dashboard HTTP requests in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)
)

// RecordAPIRequest records one round trip to the remote poll API.
func RecordAPIRequest(operation, status string, duration time.Duration) {
	APIRequestTotal.WithLabelValues(operation, status).Inc()
	APIRequestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordVoteOutcome counts one vote attempt by its final outcome.
func RecordVoteOutcome(outcome string) {
	VoteOutcomes.WithLabelValues(outcome).Inc()
}

// RecordCommentOperation counts comment posts and reactions by result.
func RecordCommentOperation(operation, status string) {
	CommentOperations.WithLabelValues(operation, status).Inc()
}

// RecordCacheOperation counts snapshot cache hits and misses.
func RecordCacheOperation(operation string, hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	CacheOperations.WithLabelValues(operation, status).Inc()
}

// MetricsMiddleware instruments dashboard requests.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		DashboardRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}
