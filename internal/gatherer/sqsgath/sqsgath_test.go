package sqsgath_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/gatherer/sqsgath"
	"github.com/programme-lv/judge/pkg/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sender struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (s *sender) SendMessage(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("no deadline")
	}
	s.inputs = append(s.inputs, params)
	return &sqs.SendMessageOutput{}, s.err
}

func TestSendsToQueue(t *testing.T) {
	client := &sender{}
	g := sqsgath.New(client, "https://sqs.example/q", "eval-1", nil)

	g.ReachCase(2)
	g.FinishCase(2, verdict.TimeLimitExceeded, "", &api.RunData{TimedOut: true})

	require.Len(t, client.inputs, 2)
	in := client.inputs[1]
	assert.Equal(t, "https://sqs.example/q", aws.ToString(in.QueueUrl))
	assert.Equal(t, string(api.FinishCaseMsg), aws.ToString(in.MessageAttributes["msg_type"].StringValue))

	var msg api.FinishCase
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &msg))
	assert.Equal(t, "eval-1", msg.EvalUuid)
	assert.Equal(t, uint32(2), msg.CaseID)
	assert.Equal(t, verdict.TimeLimitExceeded, msg.Result)
	require.NotNil(t, msg.RunData)
	assert.True(t, msg.RunData.TimedOut)
}

func TestSendFailureIsNotFatal(t *testing.T) {
	client := &sender{err: errors.New("throttled")}
	g := sqsgath.New(client, "q", "eval-2", nil)

	g.StartJob(0)
	g.FinishJob(verdict.Accepted, 100)
	require.Len(t, client.inputs, 2)
}
