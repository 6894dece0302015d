package aws

import (
	"context"

	apperrors "advisor-routing/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSPublisher sends transactional SMS through Amazon SNS.
type SMSPublisher struct {
	client SNSService
}

func NewSMSPublisher(client SNSService) *SMSPublisher {
	return &SMSPublisher{client: client}
}

func NewSMSPublisherFromConfig(cfg aws.Config) *SMSPublisher {
	return NewSMSPublisher(sns.NewFromConfig(cfg))
}

func (p *SMSPublisher) SendSMS(ctx context.Context, phone, message string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("sms", err)
	}
	return nil
}
