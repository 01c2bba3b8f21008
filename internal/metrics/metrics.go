package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for termdojo.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Question generation
	Generations       *prometheus.CounterVec
	GenerationLatency *prometheus.HistogramVec
	ProviderBuilds    *prometheus.CounterVec

	// Dojo
	SessionsStarted prometheus.Counter
	SessionsEnded   prometheus.Counter
	Answers         *prometheus.CounterVec
	DrawFailures    prometheus.Counter

	// Proficiency
	ProficiencyUpdates *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics on the default
// registry. Subsequent calls return the same instance.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			Generations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termdojo_question_generations_total",
					Help: "Question generation attempts by provider and outcome",
				},
				[]string{"provider", "outcome"},
			),
			GenerationLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "termdojo_question_generation_seconds",
					Help:    "Latency of question generation calls in seconds",
					Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to 32s
				},
				[]string{"provider"},
			),
			ProviderBuilds: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termdojo_provider_builds_total",
					Help: "LLM provider clients constructed, by provider",
				},
				[]string{"provider"},
			),

			SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "termdojo_dojo_sessions_started_total",
				Help: "Dojo sessions started",
			}),
			SessionsEnded: promauto.NewCounter(prometheus.CounterOpts{
				Name: "termdojo_dojo_sessions_ended_total",
				Help: "Dojo sessions ended",
			}),
			Answers: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termdojo_dojo_answers_total",
					Help: "Self-reported dojo answers by result",
				},
				[]string{"result"},
			),
			DrawFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "termdojo_dojo_draw_failures_total",
				Help: "Draws whose question generation failed and whose term was recycled",
			}),

			ProficiencyUpdates: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termdojo_proficiency_updates_total",
					Help: "Proficiency updates by result",
				},
				[]string{"result"},
			),

			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termdojo_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "termdojo_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
		}
	})
	return sharedMetrics
}

// RecordGeneration records one question generation attempt.
func (m *Metrics) RecordGeneration(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(provider, outcome).Inc()
	m.GenerationLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordProviderBuild records construction of a provider client.
func (m *Metrics) RecordProviderBuild(provider string) {
	if m == nil {
		return
	}
	m.ProviderBuilds.WithLabelValues(provider).Inc()
}

// RecordSessionStarted records a new dojo session.
func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// RecordSessionEnded records the end of a dojo session.
func (m *Metrics) RecordSessionEnded() {
	if m == nil {
		return
	}
	m.SessionsEnded.Inc()
}

// RecordAnswer records a dojo answer.
func (m *Metrics) RecordAnswer(correct bool) {
	if m == nil {
		return
	}
	m.Answers.WithLabelValues(resultLabel(correct)).Inc()
}

// RecordDrawFailure records a recycled draw.
func (m *Metrics) RecordDrawFailure() {
	if m == nil {
		return
	}
	m.DrawFailures.Inc()
}

// RecordProficiencyUpdate records a persisted proficiency change.
func (m *Metrics) RecordProficiencyUpdate(correct bool) {
	if m == nil {
		return
	}
	m.ProficiencyUpdates.WithLabelValues(resultLabel(correct)).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func resultLabel(correct bool) string {
	if correct {
		return "correct"
	}
	return "wrong"
}
