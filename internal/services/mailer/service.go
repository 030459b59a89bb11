// -----------------------------------------------------------------------
// Mailer Service - SMTP delivery of run summary emails
// -----------------------------------------------------------------------

package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
)

// Service sends plain text email using the configured SMTP account
type Service struct {
	config *common.SMTPConfig
	logger arbor.ILogger
}

var _ interfaces.MailSender = (*Service)(nil)

// NewService creates a mailer service
func NewService(config *common.SMTPConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Configured checks minimum required delivery settings are present
func (s *Service) Configured() bool {
	c := s.config
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != "" && c.To != ""
}

// Send delivers a plain-text email to the configured recipient
func (s *Service) Send(ctx context.Context, subject, body string) error {
	if !s.Configured() {
		return fmt.Errorf("SMTP delivery not configured")
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", s.config.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	var err error
	if s.config.UseTLS {
		err = s.sendWithStartTLS(ctx, addr, auth, msg.String())
	} else {
		err = smtp.SendMail(addr, auth, s.config.From, []string{s.config.To}, []byte(msg.String()))
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().
		Str("to", s.config.To).
		Str("subject", subject).
		Msg("Email sent")
	return nil
}

// sendWithStartTLS performs the SMTP conversation with an explicit
// STARTTLS upgrade before authentication
func (s *Service) sendWithStartTLS(ctx context.Context, addr string, auth smtp.Auth, msg string) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("STARTTLS failed: %w", err)
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth failed: %w", err)
	}
	if err := client.Mail(s.config.From); err != nil {
		return err
	}
	if err := client.Rcpt(s.config.To); err != nil {
		return err
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}
