package judge

import (
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/pkg/verdict"
)

//go:generate mockgen -destination=mocks/mock_gatherer.go -package=mocks . Gatherer

// Gatherer observes one execution step by step. Calls arrive in order:
// StartJob, StartCompile, FinishCompile, then ReachCase/FinishCase for every
// case that runs, IgnoreCase for every case that does not, and FinishJob.
// When the workspace cannot be prepared only StartJob and FinishJob arrive.
type Gatherer interface {
	StartJob(jobID uint32)

	StartCompile()
	FinishCompile(res verdict.Outcome, data *api.RunData)

	ReachCase(caseID uint32)
	FinishCase(caseID uint32, res verdict.Outcome, info string, data *api.RunData)
	IgnoreCase(caseID uint32)

	FinishJob(res verdict.Outcome, score float64)
}

// Multi fans every call out to all non-nil gatherers in order.
func Multi(gatherers ...Gatherer) Gatherer {
	var m multi
	for _, g := range gatherers {
		switch g := g.(type) {
		case nil:
		case multi:
			m = append(m, g...)
		default:
			m = append(m, g)
		}
	}
	return m
}

type multi []Gatherer

func (m multi) StartJob(jobID uint32) {
	for _, g := range m {
		g.StartJob(jobID)
	}
}

func (m multi) StartCompile() {
	for _, g := range m {
		g.StartCompile()
	}
}

func (m multi) FinishCompile(res verdict.Outcome, data *api.RunData) {
	for _, g := range m {
		g.FinishCompile(res, data)
	}
}

func (m multi) ReachCase(caseID uint32) {
	for _, g := range m {
		g.ReachCase(caseID)
	}
}

func (m multi) FinishCase(caseID uint32, res verdict.Outcome, info string, data *api.RunData) {
	for _, g := range m {
		g.FinishCase(caseID, res, info, data)
	}
}

func (m multi) IgnoreCase(caseID uint32) {
	for _, g := range m {
		g.IgnoreCase(caseID)
	}
}

func (m multi) FinishJob(res verdict.Outcome, score float64) {
	for _, g := range m {
		g.FinishJob(res, score)
	}
}

// Discard drops every event.
var Discard Gatherer = discard{}

type discard struct{}

func (discard) StartJob(uint32) {}
func (discard) StartCompile() {}
func (discard) FinishCompile(verdict.Outcome, *api.RunData) {}
func (discard) ReachCase(uint32) {}
func (discard) FinishCase(uint32, verdict.Outcome, string, *api.RunData) {}
func (discard) IgnoreCase(uint32) {}
func (discard) FinishJob(verdict.Outcome, float64) {}
