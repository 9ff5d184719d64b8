package promgath_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/gatherer/promgath"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/pkg/verdict"
	"github.com/stretchr/testify/require"
)

var _ judge.Gatherer = (*promgath.Gatherer)(nil)

func TestCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := promgath.New(reg)

	g := m.Gatherer()
	g.StartJob(0)
	g.StartCompile()
	g.FinishCompile(verdict.CompilationSuccess, &api.RunData{WallMicros: 250000})
	g.ReachCase(1)
	g.FinishCase(1, verdict.Accepted, "", &api.RunData{WallMicros: 1000})
	g.ReachCase(2)
	g.FinishCase(2, verdict.TimeLimitExceeded, "", &api.RunData{WallMicros: 1000000, TimedOut: true})
	g.IgnoreCase(3)
	g.FinishJob(verdict.TimeLimitExceeded, 50)

	m.Gatherer().FinishJob(verdict.Accepted, 100)

	n, err := testutil.GatherAndCount(reg, "judge_cases_total")
	require.NoError(t, err)
	require.Equal(t, 3, n)
	n, err = testutil.GatherAndCount(reg, "judge_jobs_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]uint64{}
	for _, f := range families {
		if h := f.GetMetric()[0].GetHistogram(); h != nil {
			counts[f.GetName()] = h.GetSampleCount()
		}
	}
	require.Equal(t, uint64(1), counts["judge_compile_duration_seconds"])
	require.Equal(t, uint64(2), counts["judge_case_duration_seconds"])
	require.Equal(t, uint64(2), counts["judge_job_duration_seconds"])
}

func TestRunningGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := promgath.New(reg)

	g := m.Gatherer()
	g.StartJob(1)
	expected := `
# HELP judge_jobs_running Number of job executions in progress
# TYPE judge_jobs_running gauge
judge_jobs_running 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "judge_jobs_running"))

	g.FinishJob(verdict.Accepted, 100)
	expected = `
# HELP judge_jobs_running Number of job executions in progress
# TYPE judge_jobs_running gauge
judge_jobs_running 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "judge_jobs_running"))
}
