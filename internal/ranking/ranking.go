// Package ranking orders users by their scores over a set of problems.
package ranking

import (
	"cmp"
	"slices"
	"time"

	"github.com/programme-lv/judge/internal"
	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/pkg/verdict"
)

// ScoringRule picks the job standing for a user on one problem.
type ScoringRule int

const (
	// Latest takes the most recently created job.
	Latest ScoringRule = iota
	// Highest takes the best scoring job, the earliest one among equals.
	Highest
)

func ParseScoringRule(s string) (ScoringRule, error) {
	switch s {
	case "", "latest":
		return Latest, nil
	case "highest":
		return Highest, nil
	}
	return Latest, apperr.New(apperr.InvalidArgument, "unknown scoring rule %q", s)
}

func (r ScoringRule) String() string {
	if r == Highest {
		return "highest"
	}
	return "latest"
}

// TieBreaker orders users with equal totals.
type TieBreaker int

const (
	None TieBreaker = iota
	// SubmissionTime favours the user whose latest counted job is earlier.
	SubmissionTime
	// SubmissionCount favours the user with fewer jobs.
	SubmissionCount
	// UserID favours the lower id.
	UserID
)

func ParseTieBreaker(s string) (TieBreaker, error) {
	switch s {
	case "", "none":
		return None, nil
	case "submission_time":
		return SubmissionTime, nil
	case "submission_count":
		return SubmissionCount, nil
	case "user_id":
		return UserID, nil
	}
	return None, apperr.New(apperr.InvalidArgument, "unknown tie breaker %q", s)
}

func (t TieBreaker) String() string {
	switch t {
	case SubmissionTime:
		return "submission_time"
	case SubmissionCount:
		return "submission_count"
	case UserID:
		return "user_id"
	default:
		return "none"
	}
}

type Input struct {
	// ContestID restricts the jobs to one contest, 0 takes every job.
	ContestID  uint32
	Users      []internal.User
	Problems   []uint32
	Jobs       []*job.Record
	Rule       ScoringRule
	TieBreaker TieBreaker
}

// Entry is one ranked user. Scores follow Input.Problems.
type Entry struct {
	User   internal.User
	Rank   int
	Scores []float64
	Total  float64

	latest      time.Time
	hasLatest   bool
	submissions int
}

type pair struct {
	user    uint32
	problem uint32
}

// Compute ranks every user in the input. Every job in scope adds to the
// submission count, only finished ones can score.
func Compute(in Input) []Entry {
	byPair := make(map[pair][]*job.Record)
	counts := make(map[pair]int)
	for _, j := range in.Jobs {
		if in.ContestID != 0 && j.Submission.ContestID != in.ContestID {
			continue
		}
		k := pair{j.Submission.UserID, j.Submission.ProblemID}
		counts[k]++
		if j.State == verdict.StateFinished {
			byPair[k] = append(byPair[k], j)
		}
	}
	for _, js := range byPair {
		slices.SortStableFunc(js, func(a, b *job.Record) int {
			if c := a.Created.Compare(b.Created); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}

	entries := make([]Entry, 0, len(in.Users))
	for _, u := range in.Users {
		e := Entry{User: u, Scores: make([]float64, len(in.Problems))}
		for i, p := range in.Problems {
			k := pair{u.ID, p}
			e.submissions += counts[k]
			js := byPair[k]
			rep := representative(js, in.Rule)
			if rep == nil {
				continue
			}
			e.Scores[i] = rep.Score
			e.Total += rep.Score
			if !e.hasLatest || rep.Created.After(e.latest) {
				e.latest = rep.Created
				e.hasLatest = true
			}
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := compareKey(&a, &b, in.TieBreaker); c != 0 {
			return c
		}
		return cmp.Compare(a.User.ID, b.User.ID)
	})

	for i := range entries {
		if i > 0 && compareKey(&entries[i-1], &entries[i], in.TieBreaker) == 0 {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

// representative expects js ordered by creation time.
func representative(js []*job.Record, rule ScoringRule) *job.Record {
	if len(js) == 0 {
		return nil
	}
	switch rule {
	case Highest:
		best := js[0]
		for _, j := range js[1:] {
			if j.Score > best.Score {
				best = j
			}
		}
		return best
	default:
		return js[len(js)-1]
	}
}

// compareKey orders by total descending, then by the tie breaker. Zero
// means the two entries share a rank.
func compareKey(a, b *Entry, tb TieBreaker) int {
	if c := cmp.Compare(b.Total, a.Total); c != 0 {
		return c
	}
	switch tb {
	case SubmissionTime:
		switch {
		case a.hasLatest && b.hasLatest:
			return a.latest.Compare(b.latest)
		case a.hasLatest:
			return -1
		case b.hasLatest:
			return 1
		}
		return 0
	case SubmissionCount:
		return cmp.Compare(a.submissions, b.submissions)
	case UserID:
		return cmp.Compare(a.User.ID, b.User.ID)
	default:
		return 0
	}
}
