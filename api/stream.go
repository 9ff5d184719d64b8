package api

import (
	"time"

	"github.com/programme-lv/judge/pkg/verdict"
)

// MsgType is a message type for streaming responses
type MsgType string

// Streaming message type constants
const (
	StartJobMsg      MsgType = "job_start"
	StartCompileMsg  MsgType = "compile_start"
	FinishCompileMsg MsgType = "compile_finish"
	ReachCaseMsg     MsgType = "case_reach"
	FinishCaseMsg    MsgType = "case_finish"
	IgnoreCaseMsg    MsgType = "case_ignore"
	FinishJobMsg     MsgType = "job_finish"
)

// Header is the common header for all streaming response messages
type Header struct {
	EvalUuid string  `json:"eval_uuid"`
	MsgType  MsgType `json:"msg_type"`
}

// StartJob message sent when evaluation begins
type StartJob struct {
	Header
	JobID       uint32 `json:"job_id"`
	StartedTime string `json:"started_time"`
}

// StartCompile message sent when compilation begins
type StartCompile struct {
	Header
}

// FinishCompile message sent when compilation completes
type FinishCompile struct {
	Header
	Result  verdict.Outcome `json:"result"`
	RunData *RunData        `json:"runtime_data"`
}

// ReachCase message sent before a case is run
type ReachCase struct {
	Header
	CaseID uint32 `json:"case_id"`
}

// FinishCase message sent when a case is judged
type FinishCase struct {
	Header
	CaseID  uint32          `json:"case_id"`
	Result  verdict.Outcome `json:"result"`
	Info    string          `json:"info"`
	RunData *RunData        `json:"runtime_data"`
}

// IgnoreCase message sent for every case left unrun after a halt
type IgnoreCase struct {
	Header
	CaseID uint32 `json:"case_id"`
}

// FinishJob message sent when evaluation completes
type FinishJob struct {
	Header
	Result       verdict.Outcome `json:"result"`
	Score        float64         `json:"score"`
	FinishedTime string          `json:"finished_time"`
}

func NewHeader(evalUuid string, msgType MsgType) Header {
	return Header{
		EvalUuid: evalUuid,
		MsgType:  msgType,
	}
}

func NewStartJob(evalUuid string, jobID uint32) StartJob {
	return StartJob{
		Header:      NewHeader(evalUuid, StartJobMsg),
		JobID:       jobID,
		StartedTime: FormatTime(time.Now()),
	}
}

func NewStartCompile(evalUuid string) StartCompile {
	return StartCompile{Header: NewHeader(evalUuid, StartCompileMsg)}
}

func NewFinishCompile(evalUuid string, res verdict.Outcome, data *RunData) FinishCompile {
	return FinishCompile{
		Header:  NewHeader(evalUuid, FinishCompileMsg),
		Result:  res,
		RunData: data.Trimmed(),
	}
}

func NewReachCase(evalUuid string, caseID uint32) ReachCase {
	return ReachCase{
		Header: NewHeader(evalUuid, ReachCaseMsg),
		CaseID: caseID,
	}
}

func NewFinishCase(evalUuid string, caseID uint32, res verdict.Outcome, info string, data *RunData) FinishCase {
	return FinishCase{
		Header:  NewHeader(evalUuid, FinishCaseMsg),
		CaseID:  caseID,
		Result:  res,
		Info:    TrimToRect(info, MaxRunDataHeight, MaxRunDataWidth),
		RunData: data.Trimmed(),
	}
}

func NewIgnoreCase(evalUuid string, caseID uint32) IgnoreCase {
	return IgnoreCase{
		Header: NewHeader(evalUuid, IgnoreCaseMsg),
		CaseID: caseID,
	}
}

func NewFinishJob(evalUuid string, res verdict.Outcome, score float64) FinishJob {
	return FinishJob{
		Header:       NewHeader(evalUuid, FinishJobMsg),
		Result:       res,
		Score:        score,
		FinishedTime: FormatTime(time.Now()),
	}
}
