package interfaces

import "context"

// MailSender delivers the run summary email
type MailSender interface {
	// Send delivers a plain-text email to the configured recipient
	Send(ctx context.Context, subject, body string) error

	// Configured reports whether delivery settings are present
	Configured() bool
}
