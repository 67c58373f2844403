// Package queue dispatches assessment requests to the worker queue on SQS.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"biotwin/internal/config"
	"biotwin/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// AssessmentTrigger serializes an AssessmentMessage and sends it to the
// assessment queue. Sends go through a circuit breaker so a failing queue
// is reported as unavailable instead of stalling every request.
type AssessmentTrigger struct {
	client   SQSSender
	queueURL string
	breaker  *gobreaker.CircuitBreaker[*sqs.SendMessageOutput]
	clock    types.Clock
	logger   *slog.Logger
}

// NewAssessmentTrigger creates a trigger for the queue configured in awsCfg.
func NewAssessmentTrigger(client SQSSender, awsCfg config.AWSConfig, logger *slog.Logger) *AssessmentTrigger {
	cb := gobreaker.NewCircuitBreaker[*sqs.SendMessageOutput](gobreaker.Settings{
		Name:        "assessment-queue",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &AssessmentTrigger{
		client:   client,
		queueURL: awsCfg.AssessmentQueueURL,
		breaker:  cb,
		clock:    types.RealClock{},
		logger:   logger,
	}
}

// Enqueue requests an assessment for userID and returns the message ID.
func (t *AssessmentTrigger) Enqueue(ctx context.Context, userID string, reason types.AssessmentReason) (string, error) {
	msg := types.AssessmentMessage{
		MessageID:   uuid.NewString(),
		UserID:      userID,
		Reason:      reason,
		TraceID:     types.GetRequestID(ctx),
		RequestedAt: t.clock.Now(),
	}
	if msg.TraceID == "" {
		msg.TraceID = uuid.NewString()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("queue: failed to marshal AssessmentMessage: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(t.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"reason": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(reason)),
			},
		},
	}

	_, err = t.breaker.Execute(func() (*sqs.SendMessageOutput, error) {
		return t.client.SendMessage(ctx, input)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", types.NewAppError(types.ErrCodeUpstreamQueue, "assessment queue temporarily unavailable", err)
		}
		return "", types.NewAppError(types.ErrCodeUpstreamQueue,
			"failed to enqueue assessment", fmt.Errorf("queue: send to %s: %w", t.queueURL, err))
	}

	t.logger.InfoContext(ctx, "assessment message sent",
		"queue_url", t.queueURL,
		"message_id", msg.MessageID,
		"trace_id", msg.TraceID,
		"user_id", userID,
		"reason", string(reason),
	)

	return msg.MessageID, nil
}
