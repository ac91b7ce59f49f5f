package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// EmailAPI is the subset of the SES v2 client used by the email channel
type EmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailChannel delivers notifications over SES
type EmailChannel struct {
	client EmailAPI
	sender string
}

// NewEmailChannel creates a new email channel with the given sender address
func NewEmailChannel(client EmailAPI, sender string) *EmailChannel {
	return &EmailChannel{client: client, sender: sender}
}

// Send delivers one email
func (c *EmailChannel) Send(ctx context.Context, to, subject, body string) error {
	_, err := c.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SMSAPI is the subset of the SNS client used by the SMS channel
type SMSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSChannel delivers notifications over SNS
type SMSChannel struct {
	client SMSAPI
}

// NewSMSChannel creates a new SMS channel
func NewSMSChannel(client SMSAPI) *SMSChannel {
	return &SMSChannel{client: client}
}

// Send delivers one SMS message to a phone number
func (c *SMSChannel) Send(ctx context.Context, phoneNumber, body string) error {
	_, err := c.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	return nil
}
