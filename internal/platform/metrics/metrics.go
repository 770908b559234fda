package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives task queue lifecycle events.
type Recorder interface {
	// TaskSubmitted records a Submit call and whether the queue accepted it.
	TaskSubmitted(taskType string, accepted bool)
	// TaskFinished records a task that left a worker with the given status.
	TaskFinished(taskType string, status string, elapsed time.Duration)
}

// Nop is a Recorder that discards everything.
type Nop struct{}

// TaskSubmitted implements Recorder.
func (Nop) TaskSubmitted(string, bool) {}

// TaskFinished implements Recorder.
func (Nop) TaskFinished(string, string, time.Duration) {}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	submitted *prometheus.CounterVec
	finished  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewPrometheus creates the collectors under namespace and registers them
// with reg.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "tasks_submitted_total",
			Help:      "Tasks submitted to the queue, by type and outcome.",
		}, []string{"task_type", "outcome"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "tasks_finished_total",
			Help:      "Tasks that left a worker, by type and final status.",
		}, []string{"task_type", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "task_duration_seconds",
			Help:      "Time a worker spent on a task.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task_type"}),
	}

	for _, c := range []prometheus.Collector{p.submitted, p.finished, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// TaskSubmitted implements Recorder.
func (p *Prometheus) TaskSubmitted(taskType string, accepted bool) {
	outcome := "accepted"
	if !accepted {
		outcome = "rejected"
	}
	p.submitted.WithLabelValues(taskType, outcome).Inc()
}

// TaskFinished implements Recorder.
func (p *Prometheus) TaskFinished(taskType string, status string, elapsed time.Duration) {
	p.finished.WithLabelValues(taskType, status).Inc()
	p.duration.WithLabelValues(taskType).Observe(elapsed.Seconds())
}
