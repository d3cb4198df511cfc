// Package metrics records provisioning run metrics and writes them in the
// Prometheus text format for the node exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/firefly-engineering/fleet-ctl/internal/provision"
)

const namespace = "fleet"

// Recorder collects metrics for one run. It implements provision.Observer.
type Recorder struct {
	registry *prometheus.Registry

	containers   prometheus.Gauge
	launches     *prometheus.CounterVec
	launchTime   prometheus.Histogram
	lastRun      *prometheus.GaugeVec
	lastDuration prometheus.Gauge
	launched     prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		containers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_containers",
			Help:      "Number of devcontainers in the configuration of the last run.",
		}),
		launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_total",
			Help:      "Launcher invocations by result.",
		}, []string{"result"}),
		launchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "launch_duration_seconds",
			Help:      "Wall time of successful launcher invocations.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished, by status.",
		}, []string{"policy", "status"}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		launched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_launched",
			Help:      "Devcontainers launched successfully in the last run.",
		}),
	}
	r.registry.MustRegister(r.containers, r.launches, r.launchTime, r.lastRun, r.lastDuration, r.launched)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RunStarted implements provision.Observer.
func (r *Recorder) RunStarted(_ string, total int) {
	r.containers.Set(float64(total))
}

// ContainerLaunched implements provision.Observer.
func (r *Recorder) ContainerLaunched(_ string, elapsed time.Duration) {
	r.launches.WithLabelValues("success").Inc()
	r.launchTime.Observe(elapsed.Seconds())
}

// ContainerFailed implements provision.Observer.
func (r *Recorder) ContainerFailed(_ string, _ error) {
	r.launches.WithLabelValues("failure").Inc()
}

// RunFinished implements provision.Observer.
func (r *Recorder) RunFinished(result *provision.Result, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	r.lastRun.WithLabelValues(result.Policy, status).Set(float64(result.Finished.Unix()))
	r.lastDuration.Set(result.Duration().Seconds())
	r.launched.Set(float64(len(result.Launched)))
}

// WriteFile writes the gathered metrics to path atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

var _ provision.Observer = (*Recorder)(nil)
