package gatherer_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/gatherer"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/pkg/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ judge.Gatherer = (*gatherer.Stream)(nil)

type sent struct {
	msgType api.MsgType
	body    map[string]any
}

func record(t *testing.T, out *[]sent) gatherer.SendFunc {
	return func(msgType api.MsgType, body []byte) error {
		var m map[string]any
		require.NoError(t, json.Unmarshal(body, &m))
		*out = append(*out, sent{msgType, m})
		return nil
	}
}

func TestStreamEncodesEveryEvent(t *testing.T) {
	var out []sent
	s := gatherer.NewStream("uuid-1", record(t, &out), nil)

	s.StartJob(4)
	s.StartCompile()
	s.FinishCompile(verdict.CompilationSuccess, &api.RunData{ExitCode: 0})
	s.ReachCase(1)
	s.FinishCase(1, verdict.WrongAnswer, "differs", &api.RunData{Stdout: "3"})
	s.IgnoreCase(2)
	s.FinishJob(verdict.WrongAnswer, 0)

	types := make([]api.MsgType, len(out))
	for i, m := range out {
		types[i] = m.msgType
		assert.Equal(t, "uuid-1", m.body["eval_uuid"])
		assert.Equal(t, string(m.msgType), m.body["msg_type"])
	}
	require.Equal(t, []api.MsgType{
		api.StartJobMsg, api.StartCompileMsg, api.FinishCompileMsg,
		api.ReachCaseMsg, api.FinishCaseMsg, api.IgnoreCaseMsg, api.FinishJobMsg,
	}, types)

	assert.Equal(t, float64(4), out[0].body["job_id"])
	assert.Equal(t, "Compilation Success", out[2].body["result"])
	assert.Equal(t, "Wrong Answer", out[4].body["result"])
	assert.Equal(t, "differs", out[4].body["info"])
	assert.Equal(t, float64(2), out[5].body["case_id"])
}

func TestStreamSurvivesFailingSink(t *testing.T) {
	calls := 0
	s := gatherer.NewStream("u", func(api.MsgType, []byte) error {
		calls++
		return errors.New("broker down")
	}, nil)

	s.StartJob(0)
	s.FinishJob(verdict.SystemError, 0)
	require.Equal(t, 2, calls)
}
