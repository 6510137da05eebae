// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	recommendations *prometheus.CounterVec
	grades          *prometheus.CounterVec
	answers         *prometheus.CounterVec
	llmRequests     *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the statlab collectors plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statlab_recommendations_total",
			Help: "Recommendations produced, by category.",
		}, []string{"category"}),
		grades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statlab_grades_total",
			Help: "Recorded grades, by grading mode and correctness.",
		}, []string{"mode", "correct"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statlab_answers_total",
			Help: "Recorded answers, by concept.",
		}, []string{"concept"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statlab_llm_requests_total",
			Help: "LLM provider requests, by purpose and status.",
		}, []string{"purpose", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statlab_llm_request_duration_seconds",
			Help:    "LLM provider request latency, by purpose.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"purpose"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statlab_http_request_duration_seconds",
			Help:    "HTTP request latency, by method, route and status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.recommendations,
		m.grades,
		m.answers,
		m.llmRequests,
		m.llmLatency,
		m.httpDuration,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRecommendation(category string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveGrade(mode string, correct bool) {
	if m == nil {
		return
	}
	m.grades.WithLabelValues(mode, strconv.FormatBool(correct)).Inc()
}

func (m *Metrics) ObserveAnswer(concept string) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(concept).Inc()
}

func (m *Metrics) ObserveLLMRequest(purpose string, success bool, latency time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.llmRequests.WithLabelValues(purpose, status).Inc()
	m.llmLatency.WithLabelValues(purpose).Observe(latency.Seconds())
}

// ObserveHTTP records one served request. route is the matched pattern,
// not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(dur.Seconds())
}
