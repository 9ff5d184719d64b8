package api

// SubmitReq is the submission payload accepted on POST /jobs and echoed back
// inside every job document.
type SubmitReq struct {
	SourceCode string `json:"source_code"`
	Language   string `json:"language"`
	UserID     uint32 `json:"user_id"`
	ContestID  uint32 `json:"contest_id"`
	ProblemID  uint32 `json:"problem_id"`
}

// UserReq creates a user, or renames one when ID is set.
type UserReq struct {
	ID   *uint32 `json:"id,omitempty"`
	Name string  `json:"name"`
}

// ContestReq creates a contest, or replaces one when ID is set.
// From and To use the same layout as job timestamps.
type ContestReq struct {
	ID              *uint32  `json:"id,omitempty"`
	Name            string   `json:"name"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	ProblemIDs      []uint32 `json:"problem_ids"`
	UserIDs         []uint32 `json:"user_ids"`
	SubmissionLimit uint32   `json:"submission_limit"`
}
