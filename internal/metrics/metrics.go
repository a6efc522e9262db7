package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hostelhub_booking"

var (
	once sync.Once

	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_decisions_total",
			Help:      "Booking admission decisions by result.",
		},
		[]string{"result"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Booking status changes by target status.",
		},
		[]string{"status"},
	)

	conflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transient_conflicts_total",
			Help:      "Transactions aborted by lock or serialization conflicts.",
		},
	)

	createDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "create_duration_seconds",
			Help:      "Latency of the booking creation transaction.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	statsCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_cache_requests_total",
			Help:      "Stats cache lookups by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"method", "route", "code"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(admissions, transitions, conflicts, createDuration, statsCache, httpRequests)
	})
}

// ObserveAdmission counts one admission decision.
func ObserveAdmission(admitted bool) {
	if admitted {
		admissions.WithLabelValues("admitted").Inc()
		return
	}
	admissions.WithLabelValues("rejected").Inc()
}

// IncTransition counts a booking entering status.
func IncTransition(status string) {
	transitions.WithLabelValues(status).Inc()
}

// IncConflict counts a transient storage conflict.
func IncConflict() {
	conflicts.Inc()
}

// ObserveCreate records the duration of a creation attempt.
func ObserveCreate(start time.Time) {
	createDuration.Observe(time.Since(start).Seconds())
}

// IncStatsCache counts a cache lookup; result is "hit", "miss" or "error".
func IncStatsCache(result string) {
	statsCache.WithLabelValues(result).Inc()
}

// GinMiddleware counts requests by matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
