package utils

import (
	"context"
	"fmt"

	"dietvision/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type emailSender interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Mailer sends plain-text mail through SES.
type Mailer struct {
	client emailSender
	from   string
	to     string
}

func NewMailer(cfg aws.Config, from, to string) *Mailer {
	return &Mailer{client: ses.NewFromConfig(cfg), from: from, to: to}
}

func (m *Mailer) send(ctx context.Context, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{m.to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

func (m *Mailer) NotifyFeedback(ctx context.Context, fb models.Feedback) error {
	subject := fmt.Sprintf("New feedback (%d/5) from %s", fb.Rating, fb.Email)
	body := fmt.Sprintf("Rating: %d/5\nFrom: %s\nAt: %s\n\n%s\n",
		fb.Rating, fb.Email, fb.Timestamp.Format("2006-01-02 15:04:05"), fb.Text)
	return m.send(ctx, subject, body)
}
