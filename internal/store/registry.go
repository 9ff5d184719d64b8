package store

import (
	"cmp"
	"slices"
	"time"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal"
	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/contest"
	"github.com/programme-lv/judge/internal/ranking"
)

// PutUser creates a user, or renames user *id. Names are unique.
func (s *Store) PutUser(id *uint32, name string) (internal.User, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if name == "" {
		return internal.User{}, apperr.New(apperr.InvalidArgument, "user name is empty")
	}
	if id != nil {
		if _, ok := s.user(*id); !ok {
			return internal.User{}, apperr.New(apperr.NotFound, "user %d not found", *id)
		}
	}
	for _, u := range s.users {
		if u.Name == name && (id == nil || u.ID != *id) {
			return internal.User{}, apperr.New(apperr.InvalidArgument, "user name %q already exists", name)
		}
	}

	if id != nil {
		i := slices.IndexFunc(s.users, func(u internal.User) bool { return u.ID == *id })
		s.users[i].Name = name
		return s.users[i], nil
	}
	u := internal.User{ID: s.nextUserID, Name: name}
	s.nextUserID++
	s.users = append(s.users, u)
	return u, nil
}

// Users lists every user ordered by id.
func (s *Store) Users() []internal.User {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.sortedUsers()
}

func (s *Store) sortedUsers() []internal.User {
	res := slices.Clone(s.users)
	slices.SortFunc(res, func(a, b internal.User) int { return cmp.Compare(a.ID, b.ID) })
	return res
}

func (s *Store) user(id uint32) (internal.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return internal.User{}, false
}

// ContestSpec describes a contest to create, or to replace when ID is set.
type ContestSpec struct {
	ID              *uint32
	Name            string
	From            time.Time
	To              time.Time
	ProblemIDs      []uint32
	UserIDs         []uint32
	SubmissionLimit uint32
}

// PutContest creates or replaces a contest. Submission counters survive a
// replacement.
func (s *Store) PutContest(spec ContestSpec) (api.ContestDoc, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var prev *contest.Contest
	if spec.ID != nil {
		c, ok := s.contest(*spec.ID)
		if !ok {
			return api.ContestDoc{}, apperr.New(apperr.NotFound, "contest %d not found", *spec.ID)
		}
		prev = c
	}
	for _, id := range spec.UserIDs {
		if _, ok := s.user(id); !ok {
			return api.ContestDoc{}, apperr.New(apperr.NotFound, "user %d not found", id)
		}
	}
	for _, id := range spec.ProblemIDs {
		if _, ok := s.catalog.Problem(id); !ok {
			return api.ContestDoc{}, apperr.New(apperr.NotFound, "problem %d not found", id)
		}
	}

	id := s.nextContestID
	if prev != nil {
		id = prev.ID
	}
	c, err := contest.New(id, spec.Name, spec.From, spec.To, spec.ProblemIDs, spec.UserIDs, spec.SubmissionLimit)
	if err != nil {
		return api.ContestDoc{}, err
	}

	if prev != nil {
		c.Inherit(prev)
		i := slices.Index(s.contests, prev)
		s.contests[i] = c
	} else {
		s.nextContestID++
		s.contests = append(s.contests, c)
	}
	return c.Doc(), nil
}

// Contests lists every contest ordered by id.
func (s *Store) Contests() []api.ContestDoc {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	res := make([]api.ContestDoc, 0, len(s.contests))
	for _, c := range s.contests {
		res = append(res, c.Doc())
	}
	slices.SortFunc(res, func(a, b api.ContestDoc) int { return cmp.Compare(a.ID, b.ID) })
	return res
}

func (s *Store) Contest(id uint32) (api.ContestDoc, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c, ok := s.contest(id)
	if !ok {
		return api.ContestDoc{}, apperr.New(apperr.NotFound, "contest %d not found", id)
	}
	return c.Doc(), nil
}

func (s *Store) contest(id uint32) (*contest.Contest, bool) {
	for _, c := range s.contests {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Ranklist ranks the users of contest id. Contest 0 ranks every user over
// every catalog problem.
func (s *Store) Ranklist(id uint32, rule ranking.ScoringRule, tb ranking.TieBreaker) ([]ranking.Entry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	in := ranking.Input{
		ContestID:  id,
		Jobs:       s.jobs,
		Rule:       rule,
		TieBreaker: tb,
	}
	if id == contest.Global {
		in.Users = s.sortedUsers()
		in.Problems = s.catalog.ProblemIDs()
	} else {
		c, ok := s.contest(id)
		if !ok {
			return nil, apperr.New(apperr.NotFound, "contest %d not found", id)
		}
		for _, u := range s.sortedUsers() {
			if c.HasUser(u.ID) {
				in.Users = append(in.Users, u)
			}
		}
		in.Problems = slices.Clone(c.ProblemIDs)
	}
	return ranking.Compute(in), nil
}
