package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds SMTP connection parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string // optional - some servers allow unauthenticated relay
	Password string // optional
}

// SMTPTransport implements Transport over plain SMTP using go-mail.
// It is meant for development (mailpit and friends): it ignores the user's
// OAuth tokens and relays through the configured server, keeping the
// session email as the From address.
type SMTPTransport struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPTransport creates a new SMTP transport.
func NewSMTPTransport(config SMTPConfig, logger *slog.Logger) *SMTPTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPTransport{config: config, logger: logger}
}

// Sender returns a Sender relaying as the credentialed user's address.
func (t *SMTPTransport) Sender(creds Credentials) Sender {
	return &smtpSender{transport: t, from: creds.Email}
}

type smtpSender struct {
	transport *SMTPTransport
	from      string
}

// Send sends an email via SMTP using go-mail.
func (s *smtpSender) Send(ctx context.Context, msg *Message) (string, error) {
	m := gomail.NewMsg()

	from := msg.From
	if from == "" {
		from = s.from
	}
	if err := m.From(from); err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return "", fmt.Errorf("invalid to address: %w", err)
	}

	m.Subject(msg.Subject)

	if msg.HTMLBody != "" && msg.TextBody != "" {
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	} else if msg.HTMLBody != "" {
		m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	}

	for _, att := range msg.Attachments {
		if err := m.AttachReader(att.Filename, bytes.NewReader(att.Content),
			gomail.WithFileContentType(gomail.ContentType(att.ContentType))); err != nil {
			return "", fmt.Errorf("failed to attach file %s: %w", att.Filename, err)
		}
	}

	opts := []gomail.Option{
		gomail.WithPort(s.transport.config.Port),
		gomail.WithTimeout(30 * time.Second),
	}
	if s.transport.config.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.transport.config.Username),
			gomail.WithPassword(s.transport.config.Password),
		)
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(s.transport.config.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.transport.logger.Error("smtp: failed to send email", "to", msg.To, "error", err)
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	// SMTP does not return a provider message id; synthesize one.
	messageID := fmt.Sprintf("smtp-%d", time.Now().UnixNano())
	return messageID, nil
}
