// Package job defines the record of one submission and its lifecycle.
package job

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/pkg/verdict"
)

// Submission is the immutable payload of a job.
type Submission struct {
	SourceCode string
	Language   string
	UserID     uint32
	// ContestID 0 means the submission belongs to no contest.
	ContestID uint32
	ProblemID uint32
}

func SubmissionFrom(req api.SubmitReq) Submission {
	return Submission{
		SourceCode: req.SourceCode,
		Language:   req.Language,
		UserID:     req.UserID,
		ContestID:  req.ContestID,
		ProblemID:  req.ProblemID,
	}
}

func (s Submission) Request() api.SubmitReq {
	return api.SubmitReq{
		SourceCode: s.SourceCode,
		Language:   s.Language,
		UserID:     s.UserID,
		ContestID:  s.ContestID,
		ProblemID:  s.ProblemID,
	}
}

// CaseResult is the outcome of the compile step (ID 0) or of one case.
type CaseResult struct {
	ID      uint32
	Outcome verdict.Outcome
	// TimeMicros is wall time.
	TimeMicros uint64
	MemoryKiB  uint64
	Info       string
}

// Record is a job. ID, UserName, Submission and Created never change once
// the record is stored, reruns overwrite everything else.
type Record struct {
	ID uint32
	// Uuid correlates streamed progress messages of one execution.
	Uuid       string
	UserName   string
	Submission Submission
	Created    time.Time
	Updated    time.Time
	State      verdict.State
	Outcome    verdict.Outcome
	Score      float64
	Cases      []CaseResult
}

func New(id uint32, userName string, sub Submission, now time.Time) *Record {
	return &Record{
		ID:         id,
		Uuid:       uuid.NewString(),
		UserName:   userName,
		Submission: sub,
		Created:    now,
		Updated:    now,
		State:      verdict.StateQueueing,
		Outcome:    verdict.Waiting,
	}
}

// Reset prepares the record for a fresh execution over caseCount cases:
// zero score and one Waiting placeholder per case plus the compile step.
func (r *Record) Reset(caseCount int) {
	r.Score = 0
	r.Cases = make([]CaseResult, caseCount+1)
	for i := range r.Cases {
		r.Cases[i] = CaseResult{ID: uint32(i), Outcome: verdict.Waiting}
	}
}

func (r *Record) Clone() *Record {
	c := *r
	c.Cases = slices.Clone(r.Cases)
	return &c
}

func (r *Record) Response() api.JobResp {
	cases := make([]api.CaseResp, len(r.Cases))
	for i, c := range r.Cases {
		cases[i] = api.CaseResp{
			ID:     c.ID,
			Result: c.Outcome,
			Time:   c.TimeMicros,
			Memory: c.MemoryKiB,
			Info:   c.Info,
		}
	}
	return api.JobResp{
		ID:          r.ID,
		CreatedTime: api.FormatTime(r.Created),
		UpdatedTime: api.FormatTime(r.Updated),
		Submission:  r.Submission.Request(),
		State:       r.State,
		Result:      r.Outcome,
		Score:       r.Score,
		Cases:       cases,
	}
}

// Filter selects records. Nil fields match everything. From and To are
// exclusive bounds on the creation time.
type Filter struct {
	UserID    *uint32
	UserName  *string
	ContestID *uint32
	ProblemID *uint32
	Language  *string
	From      *time.Time
	To        *time.Time
	State     *verdict.State
	Outcome   *verdict.Outcome
}

func (f Filter) Match(r *Record) bool {
	switch {
	case f.UserID != nil && *f.UserID != r.Submission.UserID:
		return false
	case f.UserName != nil && *f.UserName != r.UserName:
		return false
	case f.ContestID != nil && *f.ContestID != r.Submission.ContestID:
		return false
	case f.ProblemID != nil && *f.ProblemID != r.Submission.ProblemID:
		return false
	case f.Language != nil && *f.Language != r.Submission.Language:
		return false
	case f.From != nil && !r.Created.After(*f.From):
		return false
	case f.To != nil && !r.Created.Before(*f.To):
		return false
	case f.State != nil && *f.State != r.State:
		return false
	case f.Outcome != nil && *f.Outcome != r.Outcome:
		return false
	}
	return true
}
