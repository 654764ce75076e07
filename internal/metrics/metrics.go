package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "linktree"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	resetEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_events_total",
		Help:      "Password reset operations by stage and outcome.",
	}, []string{"stage", "outcome"})

	tokensPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_tokens_purged_total",
		Help:      "Expired reset tokens removed by the cleanup job.",
	})
)

// Reset stages
const (
	StageRequest  = "request"
	StageValidate = "validate"
	StageComplete = "complete"
)

// Outcome is the label value for a result; nil maps to "success".
func Outcome(err error, label func(error) string) string {
	if err == nil {
		return "success"
	}
	return label(err)
}

func ObserveLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}

func ObserveReset(stage, outcome string) {
	resetEvents.WithLabelValues(stage, outcome).Inc()
}

func ObservePurge(n int64) {
	if n > 0 {
		tokensPurged.Add(float64(n))
	}
}

// Middleware records request count and latency per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
