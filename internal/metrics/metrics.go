// Package metrics records one scrub run for the node_exporter textfile
// collector. A run is a short-lived batch job, so nothing is served; the
// registry is flushed to a file once at the end.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitescrub"

// Recorder holds the collectors of a single run.
type Recorder struct {
	registry *prometheus.Registry

	exitCode        prometheus.Gauge
	lastRun         prometheus.Gauge
	stateDuration   *prometheus.GaugeVec
	handlerDuration *prometheus.GaugeVec
}

// NewRecorder creates a Recorder whose series carry the site and env labels.
func NewRecorder(site, env string) *Recorder {
	labels := prometheus.Labels{"site": site, "env": env}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_exit_code",
			Help:        "Exit code of the last post-db-copy scrub run.",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last scrub run finished.",
			ConstLabels: labels,
		}),
		stateDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "state_duration_seconds",
			Help:        "Time spent in each orchestrator state.",
			ConstLabels: labels,
		}, []string{"state"}),
		handlerDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "handler_duration_seconds",
			Help:        "Time spent in each scrub handler.",
			ConstLabels: labels,
		}, []string{"handler", "status"}),
	}
	r.registry.MustRegister(r.exitCode, r.lastRun, r.stateDuration, r.handlerDuration)
	return r
}

// ObserveState records time spent in state.
func (r *Recorder) ObserveState(state string, d time.Duration) {
	r.stateDuration.WithLabelValues(state).Add(d.Seconds())
}

// ObserveHandler records a handler's duration and outcome.
func (r *Recorder) ObserveHandler(handler, status string, seconds float64) {
	r.handlerDuration.WithLabelValues(handler, status).Set(seconds)
}

// Finish records the run's exit code and completion time.
func (r *Recorder) Finish(code int, at time.Time) {
	r.exitCode.Set(float64(code))
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
