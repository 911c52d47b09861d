package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const verificationSubject = "Please verify your email address"

// SendGridMailer sends mail through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	sender string
}

func NewSendGridMailer(apiKey, sender string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
	}
}

func (m *SendGridMailer) SendVerification(ctx context.Context, email, link string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("", m.sender),
		verificationSubject,
		mail.NewEmail("", email),
		fmt.Sprintf("Thank you for registering! Please click on the following link to verify your email address: %s", link),
		fmt.Sprintf("<a href=%q>Verify your email</a>", link),
	)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("send verification email: provider returned status %d", resp.StatusCode)
	}
	return nil
}
