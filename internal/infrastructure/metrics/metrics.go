// Package metrics exposes Prometheus collectors for call outcomes, pre-call
// lookups and HTTP traffic.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	appcollection "github.com/callbridge/backend/internal/application/collection"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "callbridge"

// Recorder owns the service collectors. It implements
// appcollection.OutcomeMetrics.
type Recorder struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	outcomes        *prometheus.CounterVec
	outcomeDuration *prometheus.HistogramVec
	lookups         *prometheus.CounterVec
	fieldChanges    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewRecorder registers the collectors on a fresh registry, which also
// carries the Go runtime and process collectors
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewRecorderWith(reg, reg)
}

// NewRecorderWith registers the collectors on reg and serves gatherer
func NewRecorderWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		registerer: reg,
		gatherer:   gatherer,
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "call_outcomes_total",
				Help:      "Post-call outcomes processed, by directive and result",
			},
			[]string{"directive", "result"},
		),
		outcomeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_outcome_duration_seconds",
				Help:      "Time to reconcile one post-call outcome",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"directive"},
		),
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "precall_lookups_total",
				Help:      "Pre-call profile lookups, by result",
			},
			[]string{"result"},
		),
		fieldChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "field_changes_total",
				Help:      "Fields written by reconciliation, by entity",
			},
			[]string{"entity"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests, by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveOutcome implements appcollection.OutcomeMetrics
func (r *Recorder) ObserveOutcome(directive, result string, elapsed time.Duration) {
	r.outcomes.WithLabelValues(directive, result).Inc()
	r.outcomeDuration.WithLabelValues(directive).Observe(elapsed.Seconds())
}

// ObserveLookup implements appcollection.OutcomeMetrics
func (r *Recorder) ObserveLookup(result string) {
	r.lookups.WithLabelValues(result).Inc()
}

// ObserveFieldChanges implements appcollection.OutcomeMetrics
func (r *Recorder) ObserveFieldChanges(entity string, n int) {
	if n <= 0 {
		return
	}
	r.fieldChanges.WithLabelValues(entity).Add(float64(n))
}

// GinMiddleware counts requests and their latency. Unmatched routes are
// grouped under "unmatched" to bound label cardinality.
func (r *Recorder) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		r.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RegisterDBStats exports the pool statistics of db, labelled with name
func (r *Recorder) RegisterDBStats(db *sql.DB, name string) error {
	return r.registerer.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

var _ appcollection.OutcomeMetrics = (*Recorder)(nil)
