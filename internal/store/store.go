// Package store owns every job, user and contest of the running process.
// One mutex guards all of them and stays held while a job executes, so at
// most one job runs at a time and contest budgets are checked and charged
// atomically.
package store

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/judge/internal"
	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/catalog"
	"github.com/programme-lv/judge/internal/contest"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/pkg/verdict"
)

// Executor runs one job to completion, see judge.Engine.
type Executor interface {
	Execute(ctx context.Context, rec *job.Record, prob *catalog.Problem, lang *catalog.Language, gath judge.Gatherer) verdict.Outcome
}

// GathererFactory builds the observer for one execution of rec.
type GathererFactory func(rec *job.Record) judge.Gatherer

type Store struct {
	mutex sync.Mutex

	catalog   *catalog.Catalog
	engine    Executor
	logger    *slog.Logger
	now       func() time.Time
	gatherers GathererFactory

	jobs      []*job.Record
	nextJobID uint32

	users      []internal.User
	nextUserID uint32

	contests      []*contest.Contest
	nextContestID uint32

	pending []uint32
	wake    chan struct{}
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithGatherers(f GathererFactory) Option {
	return func(s *Store) { s.gatherers = f }
}

// New creates an empty store holding only the root user.
func New(cat *catalog.Catalog, engine Executor, opts ...Option) *Store {
	s := &Store{
		catalog:       cat,
		engine:        engine,
		logger:        slog.New(slog.DiscardHandler),
		now:           time.Now,
		gatherers:     func(*job.Record) judge.Gatherer { return judge.Discard },
		users:         []internal.User{{ID: internal.RootUserID, Name: "root"}},
		nextUserID:    internal.RootUserID + 1,
		nextContestID: 1,
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type admission struct {
	userName string
	problem  *catalog.Problem
	language *catalog.Language
	contest  *contest.Contest
}

// admit validates sub without side effects.
func (s *Store) admit(sub job.Submission) (*admission, error) {
	user, ok := s.user(sub.UserID)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user %d not found", sub.UserID)
	}
	lang, ok := s.catalog.Language(sub.Language)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "language %q not found", sub.Language)
	}
	prob, ok := s.catalog.Problem(sub.ProblemID)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "problem %d not found", sub.ProblemID)
	}
	a := &admission{userName: user.Name, problem: prob, language: lang}
	if sub.ContestID != contest.Global {
		c, ok := s.contest(sub.ContestID)
		if !ok {
			return nil, apperr.New(apperr.NotFound, "contest %d not found", sub.ContestID)
		}
		if err := c.Admit(sub.UserID, sub.ProblemID, s.now()); err != nil {
			return nil, err
		}
		a.contest = c
	}
	return a, nil
}

// Submit validates sub, executes it right away and stores the finished job.
func (s *Store) Submit(ctx context.Context, sub job.Submission) (*job.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	a, err := s.admit(sub)
	if err != nil {
		return nil, err
	}

	rec := job.New(s.nextJobID, a.userName, sub, s.now())
	s.execute(ctx, rec, a.problem, a.language)

	if a.contest != nil {
		a.contest.Charge(sub.UserID, sub.ProblemID)
	}
	s.nextJobID++
	s.jobs = append(s.jobs, rec)
	return rec.Clone(), nil
}

// Enqueue validates and charges sub like Submit but leaves the job
// Queueing until Work picks it up.
func (s *Store) Enqueue(sub job.Submission) (*job.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	a, err := s.admit(sub)
	if err != nil {
		return nil, err
	}

	rec := job.New(s.nextJobID, a.userName, sub, s.now())
	if a.contest != nil {
		a.contest.Charge(sub.UserID, sub.ProblemID)
	}
	s.nextJobID++
	s.jobs = append(s.jobs, rec)
	s.pending = append(s.pending, rec.ID)

	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.logger.Debug("job queued", "job_id", rec.ID)
	return rec.Clone(), nil
}

// Work executes queued jobs one at a time until ctx is done.
func (s *Store) Work(ctx context.Context) error {
	for {
		for s.runNext(ctx) {
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}

// runNext executes the oldest queued job. It reports false when the queue
// is empty.
func (s *Store) runNext(ctx context.Context) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.pending) == 0 || ctx.Err() != nil {
		return false
	}
	id := s.pending[0]
	s.pending = s.pending[1:]

	rec, ok := s.job(id)
	if !ok || rec.State != verdict.StateQueueing {
		return true
	}
	prob, okP := s.catalog.Problem(rec.Submission.ProblemID)
	lang, okL := s.catalog.Language(rec.Submission.Language)
	if !okP || !okL {
		s.logger.Error("queued job references unknown problem or language", "job_id", id)
		rec.State = verdict.StateFinished
		rec.Outcome = verdict.SystemError
		rec.Updated = s.now()
		return true
	}
	s.execute(ctx, rec, prob, lang)
	return true
}

// Rerun executes a finished job again in place.
func (s *Store) Rerun(ctx context.Context, id uint32) (*job.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, ok := s.job(id)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "job %d not found", id)
	}
	if rec.State != verdict.StateFinished {
		return nil, apperr.New(apperr.InvalidState, "job %d is %s", id, rec.State)
	}
	prob, okP := s.catalog.Problem(rec.Submission.ProblemID)
	lang, okL := s.catalog.Language(rec.Submission.Language)
	if !okP || !okL {
		return nil, apperr.New(apperr.Internal, "job %d references an unknown problem or language", id)
	}

	rec.Uuid = uuid.NewString()
	s.execute(ctx, rec, prob, lang)
	return rec.Clone(), nil
}

// Cancel drops a job that has not started yet.
func (s *Store) Cancel(id uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	i := slices.IndexFunc(s.jobs, func(r *job.Record) bool { return r.ID == id })
	if i < 0 {
		return apperr.New(apperr.NotFound, "job %d not found", id)
	}
	if s.jobs[i].State != verdict.StateQueueing {
		return apperr.New(apperr.InvalidState, "job %d is %s", id, s.jobs[i].State)
	}
	s.jobs[i].State = verdict.StateCanceled
	s.jobs = slices.Delete(s.jobs, i, i+1)
	s.pending = slices.DeleteFunc(s.pending, func(p uint32) bool { return p == id })
	s.logger.Debug("job canceled", "job_id", id)
	return nil
}

func (s *Store) Get(id uint32) (*job.Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, ok := s.job(id)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "job %d not found", id)
	}
	return rec.Clone(), nil
}

// List returns the matching jobs ordered by creation time.
func (s *Store) List(f job.Filter) []*job.Record {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	res := make([]*job.Record, 0)
	for _, rec := range s.jobs {
		if f.Match(rec) {
			res = append(res, rec.Clone())
		}
	}
	slices.SortStableFunc(res, func(a, b *job.Record) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return res
}

func (s *Store) execute(ctx context.Context, rec *job.Record, prob *catalog.Problem, lang *catalog.Language) {
	gath := s.gatherers(rec)
	// a started job always runs to the end, the caller going away must not
	// turn into a verdict
	s.engine.Execute(context.WithoutCancel(ctx), rec, prob, lang, gath)
}

func (s *Store) job(id uint32) (*job.Record, bool) {
	for _, rec := range s.jobs {
		if rec.ID == id {
			return rec, true
		}
	}
	return nil, false
}
