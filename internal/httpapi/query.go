package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/pkg/verdict"
)

func pathID(r *http.Request, name string) (uint32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.New(apperr.InvalidArgument, "invalid %s %q", name, raw)
	}
	return uint32(id), nil
}

// jobFilter reads the optional filters of GET /jobs.
func jobFilter(q url.Values) (job.Filter, error) {
	var f job.Filter
	var err error

	if f.UserID, err = uintParam(q, "user_id"); err != nil {
		return f, err
	}
	if f.ContestID, err = uintParam(q, "contest_id"); err != nil {
		return f, err
	}
	if f.ProblemID, err = uintParam(q, "problem_id"); err != nil {
		return f, err
	}
	f.UserName = stringParam(q, "user_name")
	f.Language = stringParam(q, "language")
	if f.From, err = timeParam(q, "from"); err != nil {
		return f, err
	}
	if f.To, err = timeParam(q, "to"); err != nil {
		return f, err
	}

	if s := q.Get("state"); s != "" {
		state, err := verdict.ParseState(s)
		if err != nil {
			return f, apperr.Wrap(err, apperr.InvalidArgument, "invalid state")
		}
		f.State = &state
	}
	if s := q.Get("result"); s != "" {
		res, err := verdict.ParseOutcome(s)
		if err != nil {
			return f, apperr.Wrap(err, apperr.InvalidArgument, "invalid result")
		}
		f.Outcome = &res
	}
	return f, nil
}

func uintParam(q url.Values, name string) (*uint32, error) {
	if !q.Has(name) {
		return nil, nil
	}
	v, err := strconv.ParseUint(q.Get(name), 10, 32)
	if err != nil {
		return nil, apperr.New(apperr.InvalidArgument, "invalid %s %q", name, q.Get(name))
	}
	res := uint32(v)
	return &res, nil
}

func stringParam(q url.Values, name string) *string {
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name)
	return &v
}

func timeParam(q url.Values, name string) (*time.Time, error) {
	if !q.Has(name) {
		return nil, nil
	}
	t, err := api.ParseTime(q.Get(name))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.InvalidArgument, "invalid %s", name)
	}
	return &t, nil
}
