package job_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/pkg/verdict"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2022, 8, 27, 2, 5, 29, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestNewAndReset(t *testing.T) {
	rec := job.New(3, "alice", job.Submission{Language: "Shell", UserID: 1, ProblemID: 2}, t0)
	require.Equal(t, verdict.StateQueueing, rec.State)
	require.Equal(t, verdict.Waiting, rec.Outcome)
	require.Empty(t, rec.Cases)
	_, err := uuid.Parse(rec.Uuid)
	require.NoError(t, err)

	rec.Score = 42
	rec.Reset(2)
	require.Zero(t, rec.Score)
	require.Len(t, rec.Cases, 3)
	for i, c := range rec.Cases {
		require.Equal(t, uint32(i), c.ID)
		require.Equal(t, verdict.Waiting, c.Outcome)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rec := job.New(0, "root", job.Submission{}, t0)
	rec.Reset(1)
	c := rec.Clone()
	c.Cases[1].Outcome = verdict.Accepted
	require.Equal(t, verdict.Waiting, rec.Cases[1].Outcome)
}

func TestResponseDocument(t *testing.T) {
	rec := job.New(5, "root", job.Submission{SourceCode: "x", Language: "Shell", ProblemID: 1}, t0)
	rec.Reset(1)
	rec.State = verdict.StateFinished
	rec.Outcome = verdict.TimeLimitExceeded
	rec.Cases[0].Outcome = verdict.CompilationSuccess
	rec.Cases[1].Outcome = verdict.TimeLimitExceeded
	rec.Updated = t0.Add(1500 * time.Millisecond)

	b, err := json.Marshal(rec.Response())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Equal(t, "2022-08-27T02:05:29.000Z", doc["created_time"])
	require.Equal(t, "2022-08-27T02:05:30.500Z", doc["updated_time"])
	require.Equal(t, "Finished", doc["state"])
	require.Equal(t, "Time Limit Exceeded", doc["result"])
	cases := doc["cases"].([]any)
	require.Equal(t, "Compilation Success", cases[0].(map[string]any)["result"])
	sub := doc["submission"].(map[string]any)
	require.Equal(t, "Shell", sub["language"])
}

func TestFilterMatch(t *testing.T) {
	rec := job.New(1, "bob", job.Submission{Language: "Shell", UserID: 2, ContestID: 1, ProblemID: 0}, t0)
	rec.State = verdict.StateFinished
	rec.Outcome = verdict.Accepted

	require.True(t, job.Filter{}.Match(rec))
	require.True(t, job.Filter{UserID: ptr(uint32(2)), UserName: ptr("bob"), ContestID: ptr(uint32(1)), ProblemID: ptr(uint32(0))}.Match(rec))
	require.False(t, job.Filter{UserName: ptr("alice")}.Match(rec))
	require.False(t, job.Filter{Language: ptr("C++")}.Match(rec))
	require.True(t, job.Filter{State: ptr(verdict.StateFinished), Outcome: ptr(verdict.Accepted)}.Match(rec))
	require.False(t, job.Filter{Outcome: ptr(verdict.WrongAnswer)}.Match(rec))

	// bounds are exclusive
	require.False(t, job.Filter{From: ptr(t0)}.Match(rec))
	require.False(t, job.Filter{To: ptr(t0)}.Match(rec))
	require.True(t, job.Filter{From: ptr(t0.Add(-time.Millisecond)), To: ptr(t0.Add(time.Millisecond))}.Match(rec))
}
