// Package observability exposes Prometheus metrics for the command surface
// and the propagation engine.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propnet",
			Subsystem: "core",
			Name:      "commands_total",
			Help:      "External commands executed, by method and outcome.",
		},
		[]string{"method", "ok"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propnet",
			Subsystem: "core",
			Name:      "command_duration_seconds",
			Help:      "Command duration including the full propagation fixpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	propagationSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "propnet",
			Subsystem: "engine",
			Name:      "propagation_steps",
			Help:      "Scheduler steps taken per command before quiescence.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	contradictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "propnet",
			Subsystem: "engine",
			Name:      "contradictions_total",
			Help:      "Contradiction values stored on contacts.",
		},
	)
	divergencesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "propnet",
			Subsystem: "engine",
			Name:      "divergences_total",
			Help:      "Commands rolled back after exceeding the step bound.",
		},
	)
	snapshotOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propnet",
			Subsystem: "storage",
			Name:      "snapshot_ops_total",
			Help:      "Snapshot loads and saves, by operation and outcome.",
		},
		[]string{"op", "ok"},
	)
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			commandsTotal,
			commandDuration,
			propagationSteps,
			contradictionsTotal,
			divergencesTotal,
			snapshotOps,
		)
	})
}

func RecordCommand(method string, ok bool, duration time.Duration) {
	Register()
	commandsTotal.WithLabelValues(method, strconv.FormatBool(ok)).Inc()
	commandDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RecordPropagation(steps int, contradictions int) {
	Register()
	propagationSteps.Observe(float64(steps))
	contradictionsTotal.Add(float64(contradictions))
}

func RecordDivergence() {
	Register()
	divergencesTotal.Inc()
}

func RecordSnapshotOp(op string, ok bool) {
	Register()
	snapshotOps.WithLabelValues(op, strconv.FormatBool(ok)).Inc()
}
