package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metrics bundles the HTTP request metrics and the payment-domain counters.
// It owns its registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec

	// WebhookNotifications counts gateway notifications by outcome
	// (paid, overdue, pending, retained, invalid_signature, unknown_order, error).
	WebhookNotifications *prometheus.CounterVec
	// SnapTransactions counts transaction creations by result (ok, not_found, gateway_error, error).
	SnapTransactions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.reqCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests processed, partitioned by status code, method and route.",
	}, []string{"code", "method", "route"})

	m.reqDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "HTTP request latencies in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"code", "method", "route"})

	m.WebhookNotifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_notifications_total",
		Help: "Gateway webhook notifications, partitioned by reconciliation outcome.",
	}, []string{"outcome"})

	m.SnapTransactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_snap_transactions_total",
		Help: "Snap transaction creations, partitioned by result.",
	}, []string{"result"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.reqCnt,
		m.reqDur,
		m.WebhookNotifications,
		m.SnapTransactions,
	)
	return m
}

// HandlerFunc is the gin middleware recording request count and latency.
func (m *Metrics) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		code := strconv.Itoa(c.Writer.Status())
		m.reqCnt.WithLabelValues(code, c.Request.Method, route).Inc()
		m.reqDur.WithLabelValues(code, c.Request.Method, route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// Serve exposes /metrics on its own listener so the scrape port stays off
// the public API.
func (m *Metrics) Serve(addr string, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("metrics listener error: %v", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(New),
)
