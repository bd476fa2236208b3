// Package metrics defines the Prometheus collectors for estimation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records estimation metrics into a Prometheus registry.
type Recorder struct {
	estimates   *prometheus.CounterVec
	errors      *prometheus.CounterVec
	evaluations prometheus.Histogram
	duration    prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thetacat_estimates_total",
			Help: "Completed theta estimates by outcome.",
		}, []string{"outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thetacat_estimate_errors_total",
			Help: "Failed theta estimates by error kind.",
		}, []string{"kind"}),
		evaluations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "thetacat_likelihood_evaluations",
			Help:    "Log-likelihood evaluations per estimate.",
			Buckets: []float64{0, 5, 10, 20, 30, 50, 75, 100},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "thetacat_estimate_duration_seconds",
			Help:    "Wall time of a single estimate.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	reg.MustRegister(r.estimates, r.errors, r.evaluations, r.duration)
	return r
}

// ObserveEstimate records a successful estimate.
func (r *Recorder) ObserveEstimate(outcome string, evaluations int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.estimates.WithLabelValues(outcome).Inc()
	r.evaluations.Observe(float64(evaluations))
	r.duration.Observe(elapsed.Seconds())
}

// ObserveError records a failed estimate.
func (r *Recorder) ObserveError(kind string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(kind).Inc()
}
