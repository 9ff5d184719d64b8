// Package contest models time-boxed contests and their per-user,
// per-problem submission budgets.
package contest

import (
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/apperr"
)

// Global is the contest id meaning "no contest".
const Global uint32 = 0

type pair struct {
	user    uint32
	problem uint32
}

// Contest is open during [From, To). Membership is fixed when the contest
// is created or replaced.
type Contest struct {
	ID              uint32
	Name            string
	From            time.Time
	To              time.Time
	ProblemIDs      []uint32
	UserIDs         []uint32
	SubmissionLimit uint32

	problems mapset.Set[uint32]
	users    mapset.Set[uint32]
	used     map[pair]uint32
}

// New validates the contest parameters. Existence of the referenced users
// and problems is checked by the caller.
func New(id uint32, name string, from, to time.Time, problemIDs, userIDs []uint32, limit uint32) (*Contest, error) {
	if from.After(to) {
		return nil, apperr.New(apperr.InvalidArgument, "contest starts after it ends")
	}
	problems := mapset.NewThreadUnsafeSet(problemIDs...)
	if problems.Cardinality() != len(problemIDs) {
		return nil, apperr.New(apperr.InvalidArgument, "duplicate problem id")
	}
	users := mapset.NewThreadUnsafeSet(userIDs...)
	if users.Cardinality() != len(userIDs) {
		return nil, apperr.New(apperr.InvalidArgument, "duplicate user id")
	}
	return &Contest{
		ID:              id,
		Name:            name,
		From:            from.UTC(),
		To:              to.UTC(),
		ProblemIDs:      slices.Clone(problemIDs),
		UserIDs:         slices.Clone(userIDs),
		SubmissionLimit: limit,
		problems:        problems,
		users:           users,
		used:            make(map[pair]uint32),
	}, nil
}

func (c *Contest) Open(now time.Time) bool {
	return !now.Before(c.From) && now.Before(c.To)
}

func (c *Contest) HasUser(id uint32) bool { return c.users.Contains(id) }

func (c *Contest) HasProblem(id uint32) bool { return c.problems.Contains(id) }

// Admit checks whether userID may submit problemID at now.
func (c *Contest) Admit(userID, problemID uint32, now time.Time) error {
	if !c.Open(now) {
		return apperr.New(apperr.InvalidArgument, "contest %d is not open", c.ID)
	}
	if !c.HasUser(userID) {
		return apperr.New(apperr.InvalidArgument, "user %d is not in contest %d", userID, c.ID)
	}
	if !c.HasProblem(problemID) {
		return apperr.New(apperr.InvalidArgument, "problem %d is not in contest %d", problemID, c.ID)
	}
	if c.Used(userID, problemID) >= c.SubmissionLimit {
		return apperr.New(apperr.RateLimit, "submission limit %d reached", c.SubmissionLimit)
	}
	return nil
}

// Charge records one submission of problemID by userID.
func (c *Contest) Charge(userID, problemID uint32) {
	c.used[pair{userID, problemID}]++
}

func (c *Contest) Used(userID, problemID uint32) uint32 {
	return c.used[pair{userID, problemID}]
}

// Inherit takes over the counters of the contest this one replaces.
func (c *Contest) Inherit(prev *Contest) {
	for k, v := range prev.used {
		c.used[k] = v
	}
}

func (c *Contest) Doc() api.ContestDoc {
	return api.ContestDoc{
		ID:              c.ID,
		Name:            c.Name,
		From:            api.FormatTime(c.From),
		To:              api.FormatTime(c.To),
		ProblemIDs:      slices.Clone(c.ProblemIDs),
		UserIDs:         slices.Clone(c.UserIDs),
		SubmissionLimit: c.SubmissionLimit,
	}
}
