// Package promgath exports execution counters and durations to Prometheus.
package promgath

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/pkg/verdict"
)

type Metrics struct {
	jobs            *prometheus.CounterVec
	cases           *prometheus.CounterVec
	running         prometheus.Gauge
	jobDuration     prometheus.Histogram
	compileDuration prometheus.Histogram
	caseDuration    prometheus.Histogram
}

// New creates the judge metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judge_jobs_total",
				Help: "Total number of finished job executions by result",
			},
			[]string{"result"},
		),
		cases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judge_cases_total",
				Help: "Total number of judged cases by result",
			},
			[]string{"result"},
		),
		running: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "judge_jobs_running",
				Help: "Number of job executions in progress",
			},
		),
		jobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "judge_job_duration_seconds",
				Help:    "End-to-end job execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "judge_compile_duration_seconds",
				Help:    "Compile duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		caseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "judge_case_duration_seconds",
				Help:    "Wall time of the submission on one case in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
	}
	reg.MustRegister(m.jobs, m.cases, m.running, m.jobDuration, m.compileDuration, m.caseDuration)
	return m
}

// Gatherer returns an observer for one execution.
func (m *Metrics) Gatherer() *Gatherer {
	return &Gatherer{m: m, now: time.Now}
}

type Gatherer struct {
	m       *Metrics
	now     func() time.Time
	started time.Time
}

func (g *Gatherer) StartJob(uint32) {
	g.started = g.now()
	g.m.running.Inc()
}

func (g *Gatherer) StartCompile() {}

func (g *Gatherer) FinishCompile(_ verdict.Outcome, data *api.RunData) {
	if data != nil {
		g.m.compileDuration.Observe(micros(data.WallMicros))
	}
}

func (g *Gatherer) ReachCase(uint32) {}

func (g *Gatherer) FinishCase(_ uint32, res verdict.Outcome, _ string, data *api.RunData) {
	g.m.cases.WithLabelValues(res.String()).Inc()
	if data != nil {
		g.m.caseDuration.Observe(micros(data.WallMicros))
	}
}

func (g *Gatherer) IgnoreCase(uint32) {
	g.m.cases.WithLabelValues(verdict.Skipped.String()).Inc()
}

func (g *Gatherer) FinishJob(res verdict.Outcome, _ float64) {
	g.m.running.Dec()
	g.m.jobs.WithLabelValues(res.String()).Inc()
	g.m.jobDuration.Observe(g.now().Sub(g.started).Seconds())
}

func micros(us int64) float64 {
	return float64(us) / 1e6
}
