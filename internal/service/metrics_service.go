package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. The in-flight
// analyses gauge is the operator hook for records stuck in Analyzing;
// the lifecycle imposes no timeout of its own.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	analysesInFlight prometheus.Gauge
	analysesTotal    *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	analysesInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "analyses_in_flight",
		Help: "Assessment records currently in the Analyzing state",
	})

	analysesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analyses_total",
		Help: "Completed analyses by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, analysesInFlight, analysesTotal, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		analysesInFlight: analysesInFlight,
		analysesTotal:    analysesTotal,
	}
}

// ObserveHTTPRequest records one handled request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// SetAnalysesInFlight seeds the gauge from persisted state, so records
// already in Analyzing survive a restart of the process.
func (s *MetricsService) SetAnalysesInFlight(n int) {
	s.analysesInFlight.Set(float64(n))
}

// AnalysisStarted marks a submission handed off to the worker.
func (s *MetricsService) AnalysisStarted() {
	s.analysesInFlight.Inc()
}

// AnalysisFinished marks a worker callback that landed.
func (s *MetricsService) AnalysisFinished(success bool) {
	s.analysesInFlight.Dec()
	outcome := "failed"
	if success {
		outcome = "generated"
	}
	s.analysesTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}
