package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "screenshot_translator"

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	translationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation requests by outcome",
		},
		[]string{"outcome"},
	)

	upstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_completion_duration_seconds",
			Help:      "Latency of chat completion calls to the inference server",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160, 300},
		},
	)

	statusSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_signals_total",
			Help:      "Classified inference server status signals by source and kind",
		},
		[]string{"source", "kind"},
	)
)

// Translation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeBadImage    = "bad_image"
	OutcomeUpstreamErr = "upstream_error"
)

func TranslationDone(outcome string) {
	translationsTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
}

func UpstreamDuration(duration time.Duration) {
	upstreamDuration.Observe(duration.Seconds())
}

func StatusObserved(source, kind string) {
	statusSignalsTotal.With(prometheus.Labels{
		"source": source,
		"kind":   kind,
	}).Inc()
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"code":   strconv.Itoa(c.Writer.Status()),
		}).Inc()
		httpRequestDuration.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
		}).Observe(time.Since(start).Seconds())
	}
}
