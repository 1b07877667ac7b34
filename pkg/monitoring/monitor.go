package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 推送流水线
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_ticks_total",
			Help: "Scheduler ticks by outcome",
		},
		[]string{"outcome"},
	)

	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_tick_duration_seconds",
			Help:    "Wall time of one scheduler tick",
			Buckets: []float64{0.05, 0.25, 1, 5, 15, 30, 60},
		},
	)

	DueUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_due_users",
			Help: "Users due in the most recent tick",
		},
	)

	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_signals_total",
			Help: "Generated signals by scope and source",
		},
		[]string{"scope", "source"},
	)

	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Push deliveries by provider and status",
		},
		[]string{"provider", "status"},
	)

	UserFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_user_failures_total",
			Help: "Per-user pipeline failures by stage",
		},
		[]string{"stage"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			TicksTotal,
			TickDuration,
			DueUsers,
			SignalsTotal,
			DeliveriesTotal,
			UserFailures,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
