package report

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects run outcomes in a private registry and dumps them in the text exposition format
type Metrics struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	fitness     *prometheus.GaugeVec
	assigned    *prometheus.GaugeVec
	unassigned  *prometheus.GaugeVec
	valid       *prometheus.GaugeVec
	constraints *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	labels := []string{"strategy", "instance"}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetabling_runs_total",
		Help: "Timetabling runs by outcome",
	}, []string{"strategy", "instance", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetabling_run_duration_seconds",
		Help:    "Wall time of a timetabling run",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, labels)

	fitness := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetabling_fitness",
		Help: "Soft-constraint fitness of the last schedule",
	}, labels)

	assigned := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetabling_assigned_courses",
		Help: "Courses assigned by the last schedule",
	}, labels)

	unassigned := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetabling_unassigned_courses",
		Help: "Courses left unassigned by the last schedule",
	}, labels)

	valid := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetabling_valid",
		Help: "1 when the last schedule passed verification",
	}, labels)

	constraints := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetabling_fitness_component",
		Help: "Soft-constraint sub-scores of the last schedule",
	}, []string{"strategy", "instance", "component"})

	registry.MustRegister(runs, duration, fitness, assigned, unassigned, valid, constraints)

	return &Metrics{
		registry:    registry,
		runs:        runs,
		duration:    duration,
		fitness:     fitness,
		assigned:    assigned,
		unassigned:  unassigned,
		valid:       valid,
		constraints: constraints,
	}
}

func (m *Metrics) Observe(run *Run) {
	if m == nil || run == nil {
		return
	}

	m.runs.WithLabelValues(run.Strategy, run.Instance, run.Outcome()).Inc()
	m.duration.WithLabelValues(run.Strategy, run.Instance).Observe(run.Duration.Seconds())
	m.fitness.WithLabelValues(run.Strategy, run.Instance).Set(run.Fitness.Total)
	m.assigned.WithLabelValues(run.Strategy, run.Instance).Set(float64(run.Assigned()))
	m.unassigned.WithLabelValues(run.Strategy, run.Instance).Set(float64(len(run.Unassigned)))
	m.constraints.WithLabelValues(run.Strategy, run.Instance, "consecutive").Set(run.Fitness.Consecutive)
	m.constraints.WithLabelValues(run.Strategy, run.Instance, "room_usage").Set(run.Fitness.RoomUsage)

	validValue := 0.0
	if run.Valid {
		validValue = 1
	}
	m.valid.WithLabelValues(run.Strategy, run.Instance).Set(validValue)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the collected metrics for the node exporter textfile collector
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
