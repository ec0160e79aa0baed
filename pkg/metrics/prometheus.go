package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	drawsLoaded    *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	tickets        *prometheus.CounterVec
	warnings       *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder whose collectors are registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		drawsLoaded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eurolens_draws_loaded_total",
				Help: "Draws loaded, by the source that served them",
			},
			[]string{"source"},
		),
		sourceFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eurolens_draw_source_failures_total",
				Help: "Failed fetches per draw source",
			},
			[]string{"source"},
		),
		tickets: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eurolens_tickets_generated_total",
				Help: "Generated tickets by kind (optimized or fallback)",
			},
			[]string{"kind"},
		),
		warnings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eurolens_warnings_total",
				Help: "Data quality and generation warnings emitted",
			},
			[]string{"warning"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eurolens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eurolens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDrawsLoaded records n draws served by source.
func (r *Recorder) RecordDrawsLoaded(source string, n int) {
	r.drawsLoaded.WithLabelValues(source).Add(float64(n))
}

// RecordSourceFailure records a failed fetch from source.
func (r *Recorder) RecordSourceFailure(source string) {
	r.sourceFailures.WithLabelValues(source).Inc()
}

// RecordTicket records one generated ticket.
func (r *Recorder) RecordTicket(kind string) {
	r.tickets.WithLabelValues(kind).Inc()
}

// RecordWarning records an emitted warning.
func (r *Recorder) RecordWarning(warning string) {
	r.warnings.WithLabelValues(warning).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
