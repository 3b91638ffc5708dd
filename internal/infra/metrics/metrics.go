// Package metrics owns the prometheus registry and the collectors shared by
// the processing pipeline, the aggregation side channel and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector registered on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	StepDuration *prometheus.HistogramVec
	StepItems    *prometheus.CounterVec
	StepAffected *prometheus.GaugeVec

	RouteQueries  *prometheus.CounterVec
	RouteDuration prometheus.Histogram

	AggregateRecords *prometheus.CounterVec
	AggregateBatches *prometheus.CounterVec

	httpDuration  *prometheus.HistogramVec
	totalRequests *prometheus.CounterVec
}

// New creates the collectors under namespace and registers them.
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_step_duration_seconds",
			Help:      "Duration of each graph processing step",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"step"}),
		StepItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_step_items_total",
			Help:      "Items visited by each graph processing step",
		}, []string{"step"}),
		StepAffected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_step_affected",
			Help:      "Nodes or edges changed by the last run of each step",
		}, []string{"step"}),
		RouteQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_queries_total",
			Help:      "Route queries by metric and outcome",
		}, []string{"metric", "outcome"}),
		RouteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_duration_seconds",
			Help:      "Duration of multi-waypoint route searches",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		AggregateRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_records_total",
			Help:      "Raw sensor records processed by outcome",
		}, []string{"outcome"}),
		AggregateBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_batches_total",
			Help:      "Bulk writes issued by the aggregation writer by outcome",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "The duration of HTTP requests",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "path"}),
		totalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "total_requests",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}

	m.Registry.MustRegister(
		m.StepDuration, m.StepItems, m.StepAffected,
		m.RouteQueries, m.RouteDuration,
		m.AggregateRecords, m.AggregateBatches,
		m.httpDuration, m.totalRequests,
	)

	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// EchoMiddleware records request counts and durations per route template.
func (m *Metrics) EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			method := c.Request().Method
			m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			m.totalRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()

			return err
		}
	}
}
