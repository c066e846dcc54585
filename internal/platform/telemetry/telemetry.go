// Package telemetry exposes Prometheus metrics for the HTTP layer and the
// database pool.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider owns a metrics registry and the collectors registered on it.
type Provider struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	dbPoolActive prometheus.Gauge
	dbPoolIdle   prometheus.Gauge

	reportsGenerated *prometheus.CounterVec
}

// NewProvider creates a registry with the standard Go and process collectors
// plus the application collectors.
func NewProvider(serviceName string) *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	constLabels := prometheus.Labels{"service": serviceName}

	p := &Provider{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total HTTP requests by method, route and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency in seconds.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "http_active_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		}),
		dbPoolActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_acquired_connections",
			Help:        "Connections currently acquired from the pool.",
			ConstLabels: constLabels,
		}),
		dbPoolIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Idle connections in the pool.",
			ConstLabels: constLabels,
		}),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "lab_reports_generated_total",
			Help:        "Lab reports composed, by output format.",
			ConstLabels: constLabels,
		}, []string{"format"}),
	}

	reg.MustRegister(p.requestsTotal, p.requestDuration, p.activeRequests,
		p.dbPoolActive, p.dbPoolIdle, p.reportsGenerated)

	return p
}

// Middleware records request count, latency and in-flight gauge.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.activeRequests.Inc()
			start := time.Now()

			err := next(c)

			p.activeRequests.Dec()

			// Route pattern keeps cardinality bounded; fall back to the raw
			// path only when no route matched.
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			method := c.Request().Method
			p.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			p.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler serves the registry in Prometheus exposition format.
func (p *Provider) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
	return echo.WrapHandler(h)
}

// SetDBPoolStats updates the pool gauges.
func (p *Provider) SetDBPoolStats(acquired, idle int32) {
	p.dbPoolActive.Set(float64(acquired))
	p.dbPoolIdle.Set(float64(idle))
}

// ReportGenerated counts a composed report by output format (json, html, print).
func (p *Provider) ReportGenerated(format string) {
	p.reportsGenerated.WithLabelValues(format).Inc()
}

// Registry exposes the underlying registry for tests.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}
