package metrics

import (
	coremetrics "github.com/TheRVAAccountant/resource-allocator/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records allocation runs in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	assigned    prometheus.Counter
	duplicates  prometheus.Counter
	unallocated prometheus.Gauge
	duration    prometheus.Histogram
}

// NewPromSink registers allocation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_runs_total",
		Help: "Total number of allocation runs by status",
	}, []string{"engine", "status"})
	assigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_assignments_total",
		Help: "Total number of route to vehicle assignments produced",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_duplicate_conflicts_total",
		Help: "Total number of duplicate vehicle assignments detected",
	})
	unallocated := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "allocation_unallocated_vehicles",
		Help: "Vehicles left unassigned by the most recent run",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_run_duration_seconds",
		Help:    "Wall time of one allocation run",
		Buckets: prometheus.DefBuckets,
	})

	collectors := []prometheus.Collector{runs, assigned, duplicates, unallocated, duration}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				collectors[i] = are.ExistingCollector
				continue
			}
			return nil, err
		}
	}
	runs = collectors[0].(*prometheus.CounterVec)
	assigned = collectors[1].(prometheus.Counter)
	duplicates = collectors[2].(prometheus.Counter)
	unallocated = collectors[3].(prometheus.Gauge)
	duration = collectors[4].(prometheus.Histogram)

	return &PromSink{
		runs:        runs,
		assigned:    assigned,
		duplicates:  duplicates,
		unallocated: unallocated,
		duration:    duration,
	}, nil
}

// RecordRun updates all run metrics.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Engine, string(ev.Status)).Inc()
	s.assigned.Add(float64(ev.AllocatedCount))
	s.duplicates.Add(float64(ev.DuplicateConflicts))
	s.unallocated.Set(float64(ev.UnallocatedCount))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}
