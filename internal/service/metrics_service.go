package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the application
// collectors.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	cacheOperations   *prometheus.CounterVec
	rescheduleCommits *prometheus.CounterVec
}

// NewMetricsService builds the registry and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timetable_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_cache_operations_total",
			Help: "Week-view cache lookups by outcome.",
		}, []string{"outcome"}),
		rescheduleCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_reschedule_commits_total",
			Help: "Reschedule commit attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	registry.MustRegister(s.httpRequests, s.httpDuration, s.cacheOperations, s.rescheduleCommits)
	return s
}

// Handler exposes the registry for scraping.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	s.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCacheOperation counts a cache hit or miss.
func (s *MetricsService) RecordCacheOperation(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	s.cacheOperations.WithLabelValues(outcome).Inc()
}

// RecordRescheduleCommit counts a move or swap commit attempt.
func (s *MetricsService) RecordRescheduleCommit(operation, outcome string) {
	s.rescheduleCommits.WithLabelValues(operation, outcome).Inc()
}
