// Package gatherer turns execution events into api stream messages.
// The sinks in the subpackages only decide where the encoded messages go.
package gatherer

import (
	"encoding/json"
	"log/slog"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/pkg/verdict"
)

// SendFunc delivers one encoded message.
type SendFunc func(msgType api.MsgType, body []byte) error

// Stream encodes every event of one execution and hands it to send.
// Delivery failures are logged and otherwise ignored so that a broken sink
// never changes the outcome of a job.
type Stream struct {
	evalUuid string
	send     SendFunc
	logger   *slog.Logger
}

func NewStream(evalUuid string, send SendFunc, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Stream{evalUuid: evalUuid, send: send, logger: logger}
}

func (s *Stream) StartJob(jobID uint32) {
	s.emit(api.StartJobMsg, api.NewStartJob(s.evalUuid, jobID))
}

func (s *Stream) StartCompile() {
	s.emit(api.StartCompileMsg, api.NewStartCompile(s.evalUuid))
}

func (s *Stream) FinishCompile(res verdict.Outcome, data *api.RunData) {
	s.emit(api.FinishCompileMsg, api.NewFinishCompile(s.evalUuid, res, data))
}

func (s *Stream) ReachCase(caseID uint32) {
	s.emit(api.ReachCaseMsg, api.NewReachCase(s.evalUuid, caseID))
}

func (s *Stream) FinishCase(caseID uint32, res verdict.Outcome, info string, data *api.RunData) {
	s.emit(api.FinishCaseMsg, api.NewFinishCase(s.evalUuid, caseID, res, info, data))
}

func (s *Stream) IgnoreCase(caseID uint32) {
	s.emit(api.IgnoreCaseMsg, api.NewIgnoreCase(s.evalUuid, caseID))
}

func (s *Stream) FinishJob(res verdict.Outcome, score float64) {
	s.emit(api.FinishJobMsg, api.NewFinishJob(s.evalUuid, res, score))
}

func (s *Stream) emit(msgType api.MsgType, msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", "msg_type", msgType, "error", err)
		return
	}
	if err := s.send(msgType, b); err != nil {
		s.logger.Warn("failed to deliver message", "msg_type", msgType, "eval_uuid", s.evalUuid, "error", err)
	}
}
