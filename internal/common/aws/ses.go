package aws

import (
	"context"
	"net/mail"

	apperrors "advisor-routing/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the subset of the SES client used for plain-text mail.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends plain-text email through Amazon SES.
type SESMailer struct {
	client SESService
	source string
}

func NewSESMailer(client SESService, fromEmail, fromName string) *SESMailer {
	source := fromEmail
	if fromName != "" {
		source = (&mail.Address{Name: fromName, Address: fromEmail}).String()
	}
	return &SESMailer{client: client, source: source}
}

// NewSESMailerFromConfig builds the SES client from a loaded AWS config.
func NewSESMailerFromConfig(cfg aws.Config, fromEmail, fromName string) *SESMailer {
	return NewSESMailer(ses.NewFromConfig(cfg), fromEmail, fromName)
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(m.source),
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("email", err)
	}
	return nil
}
