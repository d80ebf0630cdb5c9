// Package email provides email sending functionality.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kakeibo/backend/internal/application/adapter"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/integration/email/templates"
)

const (
	templateLoginLink = "login_link"
	subjectLoginLink  = "家計簿へのログインリンク"
)

// Service renders transactional emails and hands them to the sender.
type Service struct {
	sender   adapter.EmailSender
	renderer *templates.Renderer
}

// NewService creates a new email service.
func NewService(sender adapter.EmailSender, renderer *templates.Renderer) *Service {
	return &Service{
		sender:   sender,
		renderer: renderer,
	}
}

// SendLoginLink emails a one-time sign-in URL.
func (s *Service) SendLoginLink(ctx context.Context, email, loginURL string, expiresIn time.Duration) error {
	html, text, err := s.renderer.Render(templateLoginLink, templates.LoginLinkData{
		Email:     email,
		LoginURL:  loginURL,
		ExpiresIn: formatExpiry(expiresIn),
	})
	if err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeTemplateRenderFailed,
			"failed to render sign-in link email",
			err,
		)
	}

	result, err := s.sender.Send(ctx, adapter.SendEmailInput{
		To:      email,
		Subject: subjectLoginLink,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return err
	}

	slog.Debug("Sign-in link email accepted", "resend_id", result.ResendID)
	return nil
}

// formatExpiry renders a duration the way the templates phrase it.
func formatExpiry(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d時間", int(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%d分間", int(d/time.Minute))
	default:
		return fmt.Sprintf("%d秒間", int(d/time.Second))
	}
}

var _ adapter.LoginLinkMailer = (*Service)(nil)
