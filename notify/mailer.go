package notify

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Email is one outbound message with both plain-text and HTML bodies.
type Email struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Mailer delivers a single email.
type Mailer interface {
	Send(e Email) error
}

// SendGridMailer delivers email through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *zap.Logger
}

func NewSendGridMailer(apiKey, fromEmail, fromName string, logger *zap.Logger) *SendGridMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
		logger: logger,
	}
}

func (m *SendGridMailer) Send(e Email) error {
	message := mail.NewSingleEmail(m.from, e.Subject, mail.NewEmail(e.ToName, e.To), e.PlainText, e.HTML)

	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send to %s: %w", e.To, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	m.logger.Debug("email sent",
		zap.String("to", e.To), zap.String("subject", e.Subject), zap.Int("status", resp.StatusCode))
	return nil
}

// LogMailer logs messages instead of sending them. Used when no SendGrid
// API key is configured, typically in local development.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(e Email) error {
	m.logger.Info("email (not sent, no mailer configured)",
		zap.String("to", e.To), zap.String("subject", e.Subject), zap.String("body", e.PlainText))
	return nil
}
