package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal"
	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/ranking"
	"github.com/programme-lv/judge/internal/store"
)

// Service is the part of store.Store the handlers use.
type Service interface {
	Submit(ctx context.Context, sub job.Submission) (*job.Record, error)
	Enqueue(sub job.Submission) (*job.Record, error)
	Rerun(ctx context.Context, id uint32) (*job.Record, error)
	Cancel(id uint32) error
	Get(id uint32) (*job.Record, error)
	List(f job.Filter) []*job.Record

	PutUser(id *uint32, name string) (internal.User, error)
	Users() []internal.User

	PutContest(spec store.ContestSpec) (api.ContestDoc, error)
	Contests() []api.ContestDoc
	Contest(id uint32) (api.ContestDoc, error)
	Ranklist(id uint32, rule ranking.ScoringRule, tb ranking.TieBreaker) ([]ranking.Entry, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes registers the API routes for Handler
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/jobs", h.PostJob).Methods(http.MethodPost)
	router.HandleFunc("/jobs", h.GetJobs).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", h.GetJob).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", h.RerunJob).Methods(http.MethodPut)
	router.HandleFunc("/jobs/{id}", h.CancelJob).Methods(http.MethodDelete)

	router.HandleFunc("/users", h.PostUser).Methods(http.MethodPost)
	router.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet)

	router.HandleFunc("/contests", h.PostContest).Methods(http.MethodPost)
	router.HandleFunc("/contests", h.GetContests).Methods(http.MethodGet)
	router.HandleFunc("/contests/{id}", h.GetContest).Methods(http.MethodGet)
	router.HandleFunc("/contests/{id}/ranklist", h.GetRanklist).Methods(http.MethodGet)
}

// PostJob judges a submission before responding. With ?async=true the job
// is only queued and 202 is returned.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitReq
	if err := decodeBody(r, &req); err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	sub := job.SubmissionFrom(req)

	if r.URL.Query().Get("async") == "true" {
		rec, err := h.svc.Enqueue(sub)
		if err != nil {
			ResponseError(w, h.logger, err)
			return
		}
		ResponseWithJson(w, http.StatusAccepted, rec.Response())
		return
	}

	rec, err := h.svc.Submit(r.Context(), sub)
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	h.logger.Info("job finished", "job_id", rec.ID, "result", rec.Outcome, "score", rec.Score)
	ResponseWithJson(w, http.StatusOK, rec.Response())
}

func (h *Handler) GetJobs(w http.ResponseWriter, r *http.Request) {
	f, err := jobFilter(r.URL.Query())
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	recs := h.svc.List(f)
	res := make([]api.JobResp, len(recs))
	for i, rec := range recs {
		res[i] = rec.Response()
	}
	ResponseWithJson(w, http.StatusOK, res)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	rec, err := h.svc.Get(id)
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	ResponseWithJson(w, http.StatusOK, rec.Response())
}

func (h *Handler) RerunJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	rec, err := h.svc.Rerun(r.Context(), id)
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	ResponseWithJson(w, http.StatusOK, rec.Response())
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	if err := h.svc.Cancel(id); err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) PostUser(w http.ResponseWriter, r *http.Request) {
	var req api.UserReq
	if err := decodeBody(r, &req); err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	u, err := h.svc.PutUser(req.ID, req.Name)
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	ResponseWithJson(w, http.StatusOK, u.Doc())
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users := h.svc.Users()
	res := make([]api.UserDoc, len(users))
	for i, u := range users {
		res[i] = u.Doc()
	}
	ResponseWithJson(w, http.StatusOK, res)
}

func (h *Handler) PostContest(w http.ResponseWriter, r *http.Request) {
	var req api.ContestReq
	if err := decodeBody(r, &req); err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	from, err := api.ParseTime(req.From)
	if err != nil {
		ResponseError(w, h.logger, apperr.Wrap(err, apperr.InvalidArgument, "invalid from"))
		return
	}
	to, err := api.ParseTime(req.To)
	if err != nil {
		ResponseError(w, h.logger, apperr.Wrap(err, apperr.InvalidArgument, "invalid to"))
		return
	}
	doc, err := h.svc.PutContest(store.ContestSpec{
		ID:              req.ID,
		Name:            req.Name,
		From:            from,
		To:              to,
		ProblemIDs:      req.ProblemIDs,
		UserIDs:         req.UserIDs,
		SubmissionLimit: req.SubmissionLimit,
	})
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	ResponseWithJson(w, http.StatusOK, doc)
}

func (h *Handler) GetContests(w http.ResponseWriter, r *http.Request) {
	ResponseWithJson(w, http.StatusOK, h.svc.Contests())
}

func (h *Handler) GetContest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	doc, err := h.svc.Contest(id)
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	ResponseWithJson(w, http.StatusOK, doc)
}

// GetRanklist ranks contest {id}. Contest 0 ranks every user on every problem.
func (h *Handler) GetRanklist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	q := r.URL.Query()
	rule, err := ranking.ParseScoringRule(q.Get("scoring_rule"))
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	tb, err := ranking.ParseTieBreaker(q.Get("tie_breaker"))
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	entries, err := h.svc.Ranklist(id, rule, tb)
	if err != nil {
		ResponseError(w, h.logger, err)
		return
	}
	res := make([]api.RankEntry, len(entries))
	for i, e := range entries {
		res[i] = api.RankEntry{User: e.User.Doc(), Rank: e.Rank, Scores: e.Scores}
	}
	ResponseWithJson(w, http.StatusOK, res)
}
