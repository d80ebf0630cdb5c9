// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"
)

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ResendID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// LoginLinkMailer delivers email sign-in links.
type LoginLinkMailer interface {
	// SendLoginLink emails a one-time sign-in URL to the given address.
	SendLoginLink(ctx context.Context, email, loginURL string, expiresIn time.Duration) error
}
