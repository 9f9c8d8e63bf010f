package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localmart",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "localmart",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	CartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localmart",
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation.",
		},
		[]string{"op"},
	)

	OrderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localmart",
			Name:      "order_requests_total",
			Help:      "Per-store order requests sent to sellers.",
		},
		[]string{"result"},
	)

	ReceiptsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localmart",
			Name:      "receipts_generated_total",
			Help:      "Receipts dispatched, by kind.",
		},
		[]string{"kind"},
	)

	SupportRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "localmart",
			Name:      "support_requests_total",
			Help:      "Contact-support submissions stored.",
		},
	)

	CountryDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localmart",
			Name:      "country_detections_total",
			Help:      "Country detections by deciding source.",
		},
		[]string{"source"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		CartMutations,
		OrderRequests,
		ReceiptsGenerated,
		SupportRequests,
		CountryDetections,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency using the echo route pattern as path label.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			httpRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
