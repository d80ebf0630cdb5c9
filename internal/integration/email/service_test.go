package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domainerror "github.com/kakeibo/backend/internal/domain/error"
	"github.com/kakeibo/backend/internal/integration/email/templates"
)

func newTestService(t *testing.T) (*Service, *MockEmailSender) {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	sender := NewMockEmailSender()
	return NewService(sender, renderer), sender
}

func TestService_SendLoginLink(t *testing.T) {
	t.Run("renders both bodies", func(t *testing.T) {
		service, sender := newTestService(t)
		url := "https://kakeibo.example/login/verify?token=abc123"

		if err := service.SendLoginLink(context.Background(), "taro@example.com", url, 15*time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(sender.SentEmails) != 1 {
			t.Fatalf("expected 1 email, got %d", len(sender.SentEmails))
		}
		sent := sender.SentEmails[0]
		if sent.To != "taro@example.com" {
			t.Errorf("expected recipient taro@example.com, got %s", sent.To)
		}
		if !strings.Contains(sent.HTML, url) || !strings.Contains(sent.Text, url) {
			t.Error("expected both bodies to contain the login URL")
		}
		if !strings.Contains(sent.Text, "15分間") {
			t.Errorf("expected expiry in text body, got:\n%s", sent.Text)
		}
	})

	t.Run("sender failure is returned", func(t *testing.T) {
		service, sender := newTestService(t)
		sender.SetFailure(errors.New("503 service unavailable"), false)

		err := service.SendLoginLink(context.Background(), "taro@example.com", "https://x", time.Hour)

		if !errors.Is(err, domainerror.ErrTemporaryEmailFailure) {
			t.Errorf("expected temporary failure, got %v", err)
		}
		if errors.Is(err, domainerror.ErrPermanentEmailFailure) {
			t.Errorf("did not expect a permanent failure, got %v", err)
		}
	})
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Hour, "1時間"},
		{2 * time.Hour, "2時間"},
		{90 * time.Minute, "90分間"},
		{15 * time.Minute, "15分間"},
		{30 * time.Second, "30秒間"},
	}
	for _, tt := range tests {
		if got := formatExpiry(tt.in); got != tt.want {
			t.Errorf("formatExpiry(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPermanentError(t *testing.T) {
	if !isPermanentError(errors.New("422 validation_error")) {
		t.Error("expected 422 to be permanent")
	}
	if isPermanentError(errors.New("429 rate limit")) {
		t.Error("expected 429 to be temporary")
	}
	if isPermanentError(nil) {
		t.Error("expected nil to be non-permanent")
	}
}
