// Package sqsgath sends execution progress to an SQS response queue.
package sqsgath

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/gatherer"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/judge"
)

const sendTimeout = 10 * time.Second

// Sender is the part of *sqs.Client the gatherer needs.
type Sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

var _ Sender = (*sqs.Client)(nil)

// NewClient loads the default AWS configuration for region.
func NewClient(ctx context.Context, region string) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// New creates a gatherer that sends every message of one evaluation to the
// queue at queueUrl. The message type is attached as the msg_type attribute.
func New(client Sender, queueUrl string, evalUuid string, logger *slog.Logger) *gatherer.Stream {
	send := func(msgType api.MsgType, body []byte) error {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		_, err := client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(queueUrl),
			MessageBody: aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"msg_type": {
					DataType:    aws.String("String"),
					StringValue: aws.String(string(msgType)),
				},
			},
		})
		if err != nil {
			return fmt.Errorf("send %s to sqs: %w", msgType, err)
		}
		return nil
	}
	return gatherer.NewStream(evalUuid, send, logger)
}

// Factory builds one gatherer per job record, all sending to queueUrl.
func Factory(client Sender, queueUrl string, logger *slog.Logger) func(rec *job.Record) judge.Gatherer {
	return func(rec *job.Record) judge.Gatherer {
		return New(client, queueUrl, rec.Uuid, logger.With("job_id", rec.ID))
	}
}
