package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/catalog"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/internal/judge/judgetest"
	"github.com/programme-lv/judge/internal/ranking"
	"github.com/programme-lv/judge/internal/store"
	"github.com/programme-lv/judge/pkg/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2022, 8, 27, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeEngine finishes every job with a fixed outcome and score.
type fakeEngine struct {
	calls   atomic.Int32
	outcome verdict.Outcome
	score   float64
}

func (f *fakeEngine) Execute(ctx context.Context, rec *job.Record, prob *catalog.Problem, lang *catalog.Language, gath judge.Gatherer) verdict.Outcome {
	f.calls.Add(1)
	rec.Reset(len(prob.Cases))
	rec.State = verdict.StateFinished
	rec.Outcome = f.outcome
	rec.Score = f.score
	rec.Updated = rec.Created
	return f.outcome
}

func newStore(t *testing.T) (*store.Store, *fakeEngine, *clock) {
	t.Helper()
	eng := &fakeEngine{outcome: verdict.Accepted, score: 100}
	clk := &clock{now: t0}
	return store.New(judgetest.Catalog(t), eng, store.WithClock(clk.Now)), eng, clk
}

func sub(user, contestID, problem uint32) job.Submission {
	return job.Submission{
		SourceCode: judgetest.AplusBSource,
		Language:   judgetest.Shell,
		UserID:     user,
		ContestID:  contestID,
		ProblemID:  problem,
	}
}

func ptr[T any](v T) *T { return &v }

func requireKind(t *testing.T, kind apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), err.Error())
}

func TestSubmitEndToEnd(t *testing.T) {
	c := judgetest.Catalog(t)
	s := store.New(c, judgetest.Engine(t))

	rec, err := s.Submit(context.Background(), sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), rec.ID)
	assert.Equal(t, "root", rec.UserName)
	assert.Equal(t, verdict.StateFinished, rec.State)
	assert.Equal(t, verdict.Accepted, rec.Outcome)
	assert.Equal(t, 100.0, rec.Score)

	bad := sub(0, 0, judgetest.AplusB)
	bad.Language = judgetest.Broken
	rec, err = s.Submit(context.Background(), bad)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rec.ID)
	assert.Equal(t, verdict.CompilationError, rec.Outcome)
	assert.Zero(t, rec.Score)

	list := s.List(job.Filter{})
	require.Len(t, list, 2)
	assert.Equal(t, uint32(0), list[0].ID)
	assert.Equal(t, uint32(1), list[1].ID)
}

func TestSubmitRunsToEndWhenCallerGoesAway(t *testing.T) {
	s := store.New(judgetest.Catalog(t), judgetest.Engine(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := s.Submit(ctx, sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	assert.Equal(t, verdict.Accepted, rec.Outcome)
	assert.Equal(t, 100.0, rec.Score)
}

func TestSubmitValidatesBeforeExecuting(t *testing.T) {
	s, eng, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, sub(42, 0, judgetest.AplusB))
	requireKind(t, apperr.NotFound, err)

	badLang := sub(0, 0, judgetest.AplusB)
	badLang.Language = "Brainfuck"
	_, err = s.Submit(ctx, badLang)
	requireKind(t, apperr.NotFound, err)

	_, err = s.Submit(ctx, sub(0, 0, 77))
	requireKind(t, apperr.NotFound, err)

	_, err = s.Submit(ctx, sub(0, 9, judgetest.AplusB))
	requireKind(t, apperr.NotFound, err)

	require.Zero(t, eng.calls.Load())
	require.Empty(t, s.List(job.Filter{}))

	rec, err := s.Submit(ctx, sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	require.Equal(t, uint32(0), rec.ID)
}

func TestSubmitChecksContestWindowAndMembership(t *testing.T) {
	s, eng, clk := newStore(t)
	ctx := context.Background()

	alice, err := s.PutUser(nil, "alice")
	require.NoError(t, err)
	bob, err := s.PutUser(nil, "bob")
	require.NoError(t, err)

	doc, err := s.PutContest(store.ContestSpec{
		Name:            "weekly",
		From:            t0.Add(time.Hour),
		To:              t0.Add(2 * time.Hour),
		ProblemIDs:      []uint32{judgetest.AplusB},
		UserIDs:         []uint32{alice.ID},
		SubmissionLimit: 5,
	})
	require.NoError(t, err)
	require.Equal(t, uint32(1), doc.ID)

	_, err = s.Submit(ctx, sub(alice.ID, doc.ID, judgetest.AplusB))
	requireKind(t, apperr.InvalidArgument, err)

	clk.Set(t0.Add(90 * time.Minute))
	_, err = s.Submit(ctx, sub(bob.ID, doc.ID, judgetest.AplusB))
	requireKind(t, apperr.InvalidArgument, err)
	_, err = s.Submit(ctx, sub(alice.ID, doc.ID, judgetest.Halting))
	requireKind(t, apperr.InvalidArgument, err)
	require.Zero(t, eng.calls.Load())

	_, err = s.Submit(ctx, sub(alice.ID, doc.ID, judgetest.AplusB))
	require.NoError(t, err)

	clk.Set(t0.Add(2 * time.Hour))
	_, err = s.Submit(ctx, sub(alice.ID, doc.ID, judgetest.AplusB))
	requireKind(t, apperr.InvalidArgument, err)
}

func TestSubmitRateLimit(t *testing.T) {
	s, _, clk := newStore(t)
	ctx := context.Background()
	clk.Set(t0)

	doc, err := s.PutContest(store.ContestSpec{
		Name:            "limited",
		From:            t0.Add(-time.Hour),
		To:              t0.Add(time.Hour),
		ProblemIDs:      []uint32{judgetest.AplusB, judgetest.Halting},
		UserIDs:         []uint32{0},
		SubmissionLimit: 2,
	})
	require.NoError(t, err)

	for range 2 {
		_, err := s.Submit(ctx, sub(0, doc.ID, judgetest.AplusB))
		require.NoError(t, err)
	}
	_, err = s.Submit(ctx, sub(0, doc.ID, judgetest.AplusB))
	requireKind(t, apperr.RateLimit, err)

	// another problem has its own budget
	_, err = s.Submit(ctx, sub(0, doc.ID, judgetest.Halting))
	require.NoError(t, err)

	// queued submissions are charged too
	_, err = s.Enqueue(sub(0, doc.ID, judgetest.Halting))
	require.NoError(t, err)
	_, err = s.Enqueue(sub(0, doc.ID, judgetest.Halting))
	requireKind(t, apperr.RateLimit, err)

	// counters survive a contest update
	_, err = s.PutContest(store.ContestSpec{
		ID:              &doc.ID,
		Name:            "renamed",
		From:            t0.Add(-time.Hour),
		To:              t0.Add(time.Hour),
		ProblemIDs:      []uint32{judgetest.AplusB, judgetest.Halting},
		UserIDs:         []uint32{0},
		SubmissionLimit: 2,
	})
	require.NoError(t, err)
	_, err = s.Submit(ctx, sub(0, doc.ID, judgetest.AplusB))
	requireKind(t, apperr.RateLimit, err)
}

func TestRerun(t *testing.T) {
	c := judgetest.Catalog(t)
	s := store.New(c, judgetest.Engine(t))
	ctx := context.Background()

	_, err := s.Rerun(ctx, 0)
	requireKind(t, apperr.NotFound, err)

	first, err := s.Submit(ctx, sub(0, 0, judgetest.WrongFirst))
	require.NoError(t, err)

	again, err := s.Rerun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.Created, again.Created)
	assert.Equal(t, first.Outcome, again.Outcome)
	assert.Equal(t, first.Score, again.Score)
	assert.NotEqual(t, first.Uuid, again.Uuid)

	queued, err := s.Enqueue(sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	_, err = s.Rerun(ctx, queued.ID)
	requireKind(t, apperr.InvalidState, err)
}

func TestCancel(t *testing.T) {
	s, eng, _ := newStore(t)
	ctx := context.Background()

	requireKind(t, apperr.NotFound, s.Cancel(3))

	done, err := s.Submit(ctx, sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	requireKind(t, apperr.InvalidState, s.Cancel(done.ID))

	queued, err := s.Enqueue(sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	require.Equal(t, verdict.StateQueueing, queued.State)
	require.Empty(t, queued.Cases)

	require.NoError(t, s.Cancel(queued.ID))
	_, err = s.Get(queued.ID)
	requireKind(t, apperr.NotFound, err)
	require.Len(t, s.List(job.Filter{}), 1)
	requireKind(t, apperr.NotFound, s.Cancel(queued.ID))
	require.Equal(t, int32(1), eng.calls.Load())
}

func TestWorkRunsQueuedJobs(t *testing.T) {
	s, eng, _ := newStore(t)

	canceled, err := s.Enqueue(sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	kept, err := s.Enqueue(sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	require.NoError(t, s.Cancel(canceled.ID))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- s.Work(ctx) }()

	require.Eventually(t, func() bool {
		rec, err := s.Get(kept.ID)
		return err == nil && rec.State == verdict.StateFinished
	}, 5*time.Second, 10*time.Millisecond)

	later, err := s.Enqueue(sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		rec, err := s.Get(later.ID)
		return err == nil && rec.State == verdict.StateFinished
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.True(t, errors.Is(<-stopped, context.Canceled))
	require.Equal(t, int32(2), eng.calls.Load())
}

func TestListFilters(t *testing.T) {
	s, eng, _ := newStore(t)
	ctx := context.Background()
	alice, err := s.PutUser(nil, "alice")
	require.NoError(t, err)

	_, err = s.Submit(ctx, sub(0, 0, judgetest.AplusB))
	require.NoError(t, err)
	eng.outcome = verdict.WrongAnswer
	second, err := s.Submit(ctx, sub(alice.ID, 0, judgetest.Halting))
	require.NoError(t, err)

	got := s.List(job.Filter{UserName: ptr("alice")})
	require.Len(t, got, 1)
	require.Equal(t, second.ID, got[0].ID)

	got = s.List(job.Filter{Outcome: ptr(verdict.Accepted)})
	require.Len(t, got, 1)
	require.Equal(t, uint32(0), got[0].ID)

	got = s.List(job.Filter{From: ptr(second.Created)})
	require.Empty(t, got)

	// jobs keep the name their user had at submission time
	_, err = s.PutUser(&alice.ID, "alicia")
	require.NoError(t, err)
	rec, err := s.Get(second.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", rec.UserName)
}

func TestUsers(t *testing.T) {
	s, _, _ := newStore(t)

	a, err := s.PutUser(nil, "alice")
	require.NoError(t, err)
	require.Equal(t, uint32(1), a.ID)
	b, err := s.PutUser(nil, "bob")
	require.NoError(t, err)
	require.Equal(t, uint32(2), b.ID)

	_, err = s.PutUser(nil, "root")
	requireKind(t, apperr.InvalidArgument, err)
	_, err = s.PutUser(&a.ID, "bob")
	requireKind(t, apperr.InvalidArgument, err)
	_, err = s.PutUser(ptr(uint32(9)), "carol")
	requireKind(t, apperr.NotFound, err)
	_, err = s.PutUser(nil, "")
	requireKind(t, apperr.InvalidArgument, err)

	same, err := s.PutUser(&a.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, a, same)

	users := s.Users()
	require.Len(t, users, 3)
	require.Equal(t, "root", users[0].Name)
	require.Equal(t, "bob", users[2].Name)
}

func TestContests(t *testing.T) {
	s, _, _ := newStore(t)

	spec := store.ContestSpec{
		Name:            "c",
		From:            t0,
		To:              t0.Add(time.Hour),
		ProblemIDs:      []uint32{judgetest.AplusB},
		UserIDs:         []uint32{0},
		SubmissionLimit: 1,
	}

	bad := spec
	bad.UserIDs = []uint32{0, 5}
	_, err := s.PutContest(bad)
	requireKind(t, apperr.NotFound, err)

	bad = spec
	bad.ProblemIDs = []uint32{123}
	_, err = s.PutContest(bad)
	requireKind(t, apperr.NotFound, err)

	bad = spec
	bad.From, bad.To = spec.To, spec.From
	_, err = s.PutContest(bad)
	requireKind(t, apperr.InvalidArgument, err)

	bad = spec
	bad.ID = ptr(uint32(0))
	_, err = s.PutContest(bad)
	requireKind(t, apperr.NotFound, err)

	first, err := s.PutContest(spec)
	require.NoError(t, err)
	second, err := s.PutContest(spec)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, []uint32{first.ID, second.ID})

	update := spec
	update.ID = &first.ID
	update.Name = "renamed"
	doc, err := s.PutContest(update)
	require.NoError(t, err)
	require.Equal(t, "renamed", doc.Name)

	got, err := s.Contest(first.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)
	_, err = s.Contest(0)
	requireKind(t, apperr.NotFound, err)
	require.Len(t, s.Contests(), 2)
}

func TestRanklist(t *testing.T) {
	s, eng, clk := newStore(t)
	ctx := context.Background()
	alice, err := s.PutUser(nil, "alice")
	require.NoError(t, err)

	doc, err := s.PutContest(store.ContestSpec{
		Name:            "c",
		From:            t0.Add(-time.Hour),
		To:              t0.Add(time.Hour),
		ProblemIDs:      []uint32{judgetest.Halting, judgetest.AplusB},
		UserIDs:         []uint32{alice.ID},
		SubmissionLimit: 10,
	})
	require.NoError(t, err)
	clk.Set(t0)

	_, err = s.Submit(ctx, sub(alice.ID, doc.ID, judgetest.AplusB))
	require.NoError(t, err)
	eng.score = 30
	_, err = s.Submit(ctx, sub(0, 0, judgetest.Halting))
	require.NoError(t, err)

	_, err = s.Ranklist(7, ranking.Latest, ranking.None)
	requireKind(t, apperr.NotFound, err)

	global, err := s.Ranklist(0, ranking.Latest, ranking.None)
	require.NoError(t, err)
	require.Len(t, global, 2)
	require.Equal(t, alice.ID, global[0].User.ID)
	require.Len(t, global[0].Scores, len(judgetest.Catalog(t).Problems))
	require.Equal(t, 100.0, global[0].Total)
	require.Equal(t, 30.0, global[1].Total)

	scoped, err := s.Ranklist(doc.ID, ranking.Highest, ranking.UserID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, []float64{0, 100}, scoped[0].Scores)
	require.Equal(t, 1, scoped[0].Rank)
}
