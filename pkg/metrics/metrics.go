// Package metrics exposes learning progress as Prometheus gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/daviddao/learnlog/pkg/model"
)

// Metrics holds the learnlog gauges and counters.
type Metrics struct {
	TasksCompleted     prometheus.Gauge
	TasksTotal         prometheus.Gauge
	ProgressPercent    prometheus.Gauge
	RetentionScore     prometheus.Gauge
	ReviewsDue         prometheus.Gauge
	StreakDays         prometheus.Gauge
	MilestonesAchieved prometheus.Gauge
	ProjectsBuilt      prometheus.Gauge
	SavesTotal         *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		reg.MustRegister(g)
		return g
	}

	m := &Metrics{
		TasksCompleted:     gauge("learnlog_tasks_completed", "Number of completed roadmap tasks."),
		TasksTotal:         gauge("learnlog_tasks_total", "Number of tasks in the roadmap."),
		ProgressPercent:    gauge("learnlog_progress_percent", "Completed tasks as a percentage of the roadmap."),
		RetentionScore:     gauge("learnlog_retention_score", "Estimated retention score."),
		ReviewsDue:         gauge("learnlog_reviews_due", "Number of tasks due for review."),
		StreakDays:         gauge("learnlog_streak_days", "Current daily activity streak."),
		MilestonesAchieved: gauge("learnlog_milestones_achieved", "Number of achieved milestones."),
		ProjectsBuilt:      gauge("learnlog_projects_built", "Number of achieved project milestones."),
		SavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnlog_saves_total",
				Help: "State saves by result.",
			},
			[]string{"result"},
		),
		registry: reg,
	}
	reg.MustRegister(m.SavesTotal)
	m.SavesTotal.WithLabelValues("ok")
	m.SavesTotal.WithLabelValues("error")
	return m
}

// Observe sets every gauge from s.
func (m *Metrics) Observe(s model.Stats) {
	m.TasksCompleted.Set(float64(s.Completed))
	m.TasksTotal.Set(float64(s.Total))
	m.ProgressPercent.Set(float64(s.Percent))
	m.RetentionScore.Set(float64(s.RetentionScore))
	m.ReviewsDue.Set(float64(s.DueReviews))
	m.StreakDays.Set(float64(s.Streak))
	m.MilestonesAchieved.Set(float64(s.MilestonesAchieved))
	m.ProjectsBuilt.Set(float64(s.ProjectsBuilt))
}

// RecordSave counts a save attempt.
func (m *Metrics) RecordSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SavesTotal.WithLabelValues(result).Inc()
}

// WriteTextfile writes the metrics in text exposition format, for the node
// exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
