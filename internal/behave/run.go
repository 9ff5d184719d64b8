package behave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/pkg/verdict"
)

// Submitter executes one submission, see store.Store.
type Submitter interface {
	Submit(ctx context.Context, sub job.Submission) (*job.Record, error)
}

// Report is the outcome of one scenario. Err is nil when it passed.
type Report struct {
	Case   Case
	Record *job.Record
	Err    error
}

// Run submits every case in order and checks the expectations.
func Run(ctx context.Context, sub Submitter, cases []Case, logger *slog.Logger) []Report {
	reports := make([]Report, 0, len(cases))
	for _, c := range cases {
		log := logger.With("scenario", c.Name, "scenario_uuid", c.Uuid)

		rec, err := sub.Submit(ctx, c.Submission)
		if err != nil {
			log.Warn("submission rejected", "error", err)
			reports = append(reports, Report{Case: c, Err: fmt.Errorf("submit: %w", err)})
			continue
		}
		err = c.Expect.Check(rec)
		if err != nil {
			log.Warn("scenario failed", "job_id", rec.ID, "error", err)
		} else {
			log.Info("scenario passed", "job_id", rec.ID, "result", rec.Outcome)
		}
		reports = append(reports, Report{Case: c, Record: rec, Err: err})
	}
	return reports
}

// Check compares rec with the expectation and joins every mismatch.
func (e SpecExpect) Check(rec *job.Record) error {
	var errs []error
	if e.Result != nil && *e.Result != rec.Outcome {
		errs = append(errs, fmt.Errorf("result: expected %q, got %q", *e.Result, rec.Outcome))
	}
	if e.Score != nil && *e.Score != rec.Score {
		errs = append(errs, fmt.Errorf("score: expected %g, got %g", *e.Score, rec.Score))
	}
	if e.Cases != nil {
		got := make([]verdict.Outcome, len(rec.Cases))
		for i, c := range rec.Cases {
			got[i] = c.Outcome
		}
		if !slices.Equal(e.Cases, got) {
			errs = append(errs, fmt.Errorf("cases: expected %v, got %v", e.Cases, got))
		}
	}
	return errors.Join(errs...)
}
