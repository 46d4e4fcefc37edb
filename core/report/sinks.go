package report

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/goccy/go-json"

	"github.com/gridshop/functions/core/logger"
)

// LogSink writes error records to the process log
type LogSink struct{}

// Write logs the record as a structured error entry
func (LogSink) Write(ctx context.Context, record Record) error {
	rlog := logger.FromContext(ctx)
	rlog.WithField("context", record.Context).Errorln(record.Message)
	return nil
}

// SQSSink forwards error records to an SQS queue, where an external
// consumer ships them to the log platform.
type SQSSink struct {
	config   aws.Config
	queueURL string
}

// NewSQSSink creates a sink that sends records to the given queue URL
func NewSQSSink(config aws.Config, queueURL string) *SQSSink {
	return &SQSSink{config: config, queueURL: queueURL}
}

// Write sends the JSON-encoded record to the queue. No retry.
func (s *SQSSink) Write(ctx context.Context, record Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return err
	}
	client := sqs.NewFromConfig(s.config)
	_, err = client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}
