package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/board-server/internal/validation"
)

type metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.HistogramVec
	submitted   prometheus.Counter
	rejected    *prometheus.CounterVec
	deleted     prometheus.Counter
	rateLimited prometheus.Counter
}

// newMetrics builds a private registry so several servers (tests) can coexist in one process.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "board",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "messages_submitted_total",
			Help:      "Messages accepted and stored.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "messages_rejected_total",
			Help:      "Message submissions rejected by validation.",
		}, []string{"reason"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "messages_deleted_total",
			Help:      "Messages removed through the admin surface.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "rate_limited_total",
			Help:      "Requests refused by the submission rate limiter.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.submitted, m.rejected, m.deleted, m.rateLimited,
	)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *metrics) observeRejection(err error) {
	reason := "other"
	switch {
	case errors.Is(err, validation.ErrEmpty):
		reason = "empty"
	case errors.Is(err, validation.ErrTooLong):
		reason = "too_long"
	case errors.Is(err, validation.ErrNotString):
		reason = "not_string"
	}
	m.rejected.WithLabelValues(reason).Inc()
}
