// Package audit publishes executed commands to an SNS topic.
package audit

import (
	"context"
	"encoding/json"
	"time"

	appaws "xpilot-copilot/internal/common/aws"
	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Event describes one executed command. It carries no command parameters.
type Event struct {
	EventID   string    `json:"eventId"`
	RequestID string    `json:"requestId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	Outcome   string    `json:"outcome"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Auditor is what the pipeline publishes through.
type Auditor interface {
	PublishCommandExecuted(ctx context.Context, event Event)
}

type Publisher struct {
	sns      appaws.SNSPublisher
	topicARN string
	logger   logger.Logger
}

var _ Auditor = (*Publisher)(nil)

// NewPublisher returns a publisher; with a nil client or blank topic every publish is a no-op.
func NewPublisher(client appaws.SNSPublisher, topicARN string, log logger.Logger) *Publisher {
	return &Publisher{
		sns:      client,
		topicARN: topicARN,
		logger:   log.With(map[string]interface{}{"component": "command-audit"}),
	}
}

func (p *Publisher) Enabled() bool {
	return p.sns != nil && p.topicARN != ""
}

// PublishCommandExecuted never fails outward; publish errors are logged.
func (p *Publisher) PublishCommandExecuted(ctx context.Context, event Event) {
	if !p.Enabled() {
		return
	}
	if err := p.publish(ctx, event); err != nil {
		stdErr := errors.Normalize(err)
		p.logger.Warn("Command audit publish failed", map[string]interface{}{
			"eventId":   event.EventID,
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
	}
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.NewInternalError(err)
	}

	out, err := p.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("copilot.command.executed"),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"action":  stringAttribute(event.Action),
			"entity":  stringAttribute(event.Entity),
			"outcome": stringAttribute(event.Outcome),
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("sns", err)
	}

	p.logger.Debug("Command audit published", map[string]interface{}{
		"eventId":   event.EventID,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}

func stringAttribute(v string) types.MessageAttributeValue {
	if v == "" {
		v = "none"
	}
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}
