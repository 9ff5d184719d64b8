package api

import "github.com/programme-lv/judge/pkg/verdict"

// CaseResp is one entry of a job's case list. Index 0 is the compilation step.
type CaseResp struct {
	ID     uint32          `json:"id"`
	Result verdict.Outcome `json:"result"`
	// Time is wall time in microseconds.
	Time uint64 `json:"time"`
	// Memory is the peak resident set size in KiB.
	Memory uint64 `json:"memory"`
	Info   string `json:"info"`
}

// JobResp is the job document returned by every /jobs endpoint.
type JobResp struct {
	ID          uint32          `json:"id"`
	CreatedTime string          `json:"created_time"`
	UpdatedTime string          `json:"updated_time"`
	Submission  SubmitReq       `json:"submission"`
	State       verdict.State   `json:"state"`
	Result      verdict.Outcome `json:"result"`
	Score       float64         `json:"score"`
	Cases       []CaseResp      `json:"cases"`
}

type UserDoc struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

type ContestDoc struct {
	ID              uint32   `json:"id"`
	Name            string   `json:"name"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	ProblemIDs      []uint32 `json:"problem_ids"`
	UserIDs         []uint32 `json:"user_ids"`
	SubmissionLimit uint32   `json:"submission_limit"`
}

// RankEntry is one row of a ranklist. Scores follow the contest's problem order.
type RankEntry struct {
	User   UserDoc   `json:"user"`
	Rank   int       `json:"rank"`
	Scores []float64 `json:"scores"`
}

// ErrorResp is the body of every non-2xx response.
type ErrorResp struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
