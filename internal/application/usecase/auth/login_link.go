// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

// loginLinkMessage is returned whether or not the address has an account.
const loginLinkMessage = "If the address can receive mail, a sign-in link is on its way"

// RequestLoginLinkInput represents the input for requesting an email sign-in link.
type RequestLoginLinkInput struct {
	Email string
}

// RequestLoginLinkOutput represents the output of requesting an email sign-in link.
type RequestLoginLinkOutput struct {
	Message string
}

// RequestLoginLinkUseCase emails a one-time sign-in link.
type RequestLoginLinkUseCase struct {
	store      adapter.LoginLinkStore
	mailer     adapter.LoginLinkMailer
	appBaseURL string
	ttl        time.Duration
}

// NewRequestLoginLinkUseCase creates a new RequestLoginLinkUseCase instance.
// A nil store or mailer disables email sign-in.
func NewRequestLoginLinkUseCase(
	store adapter.LoginLinkStore,
	mailer adapter.LoginLinkMailer,
	appBaseURL string,
	ttl time.Duration,
) *RequestLoginLinkUseCase {
	return &RequestLoginLinkUseCase{
		store:      store,
		mailer:     mailer,
		appBaseURL: appBaseURL,
		ttl:        ttl,
	}
}

// Execute stores a fresh token for the address and mails the link.
func (uc *RequestLoginLinkUseCase) Execute(ctx context.Context, input RequestLoginLinkInput) (*RequestLoginLinkOutput, error) {
	if uc.store == nil || uc.mailer == nil {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeLoginLinkUnavailable,
			"email sign-in is not available",
			domainerror.ErrLoginLinkUnavailable,
		)
	}

	email := normalizeEmail(input.Email)
	if !isValidEmail(email) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidEmail,
			"invalid email format",
			domainerror.ErrInvalidEmail,
		)
	}

	token, err := generateLinkToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate sign-in token: %w", err)
	}

	if err := uc.store.Save(ctx, token, email, uc.ttl); err != nil {
		return nil, fmt.Errorf("failed to store sign-in token: %w", err)
	}

	loginURL := fmt.Sprintf("%s/login/verify?token=%s", uc.appBaseURL, url.QueryEscape(token))
	if err := uc.mailer.SendLoginLink(ctx, email, loginURL, uc.ttl); err != nil {
		// A link that never arrived must not stay redeemable.
		if _, _, discardErr := uc.store.Consume(ctx, token); discardErr != nil {
			slog.Warn("Failed to discard unsent sign-in token", "email", email, "error", discardErr)
		}
		return nil, sendFailure(email, err)
	}

	slog.Info("Sign-in link sent", "email", email)

	return &RequestLoginLinkOutput{Message: loginLinkMessage}, nil
}

// sendFailure maps a mail delivery error onto what the caller can act on.
func sendFailure(email string, err error) error {
	switch {
	case errors.Is(err, domainerror.ErrTemporaryEmailFailure):
		slog.Warn("Sign-in link delivery deferred", "email", email, "error", err)
		return domainerror.NewAuthError(
			domainerror.ErrCodeLoginLinkUnavailable,
			"the login link could not be sent right now, try again in a few minutes",
			fmt.Errorf("%w: %w", domainerror.ErrLoginLinkUnavailable, err),
		)
	case errors.Is(err, domainerror.ErrPermanentEmailFailure):
		slog.Warn("Sign-in link rejected by mail provider", "email", email, "error", err)
		return domainerror.NewAuthError(
			domainerror.ErrCodeInvalidEmail,
			"a login link cannot be delivered to this address",
			fmt.Errorf("%w: %w", domainerror.ErrInvalidEmail, err),
		)
	default:
		slog.Error("Failed to send sign-in link", "email", email, "error", err)
		return fmt.Errorf("failed to send sign-in link: %w", err)
	}
}

// VerifyLoginLinkInput represents the input for redeeming an email sign-in link.
type VerifyLoginLinkInput struct {
	Token string
}

// VerifyLoginLinkOutput represents the output of redeeming an email sign-in link.
type VerifyLoginLinkOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
	Created      bool
}

// VerifyLoginLinkUseCase redeems a sign-in token for a session, creating
// the user on first sign-in.
type VerifyLoginLinkUseCase struct {
	store        adapter.LoginLinkStore
	userRepo     adapter.UserRepository
	tokenService adapter.TokenService
}

// NewVerifyLoginLinkUseCase creates a new VerifyLoginLinkUseCase instance.
func NewVerifyLoginLinkUseCase(
	store adapter.LoginLinkStore,
	userRepo adapter.UserRepository,
	tokenService adapter.TokenService,
) *VerifyLoginLinkUseCase {
	return &VerifyLoginLinkUseCase{
		store:        store,
		userRepo:     userRepo,
		tokenService: tokenService,
	}
}

// Execute consumes the token. A token can be redeemed at most once.
func (uc *VerifyLoginLinkUseCase) Execute(ctx context.Context, input VerifyLoginLinkInput) (*VerifyLoginLinkOutput, error) {
	if uc.store == nil {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeLoginLinkUnavailable,
			"email sign-in is not available",
			domainerror.ErrLoginLinkUnavailable,
		)
	}

	invalid := domainerror.NewAuthError(
		domainerror.ErrCodeInvalidLoginLink,
		"invalid or expired sign-in link",
		domainerror.ErrInvalidLoginLink,
	)
	if input.Token == "" {
		return nil, invalid
	}

	email, found, err := uc.store.Consume(ctx, input.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to consume sign-in token: %w", err)
	}
	if !found {
		return nil, invalid
	}

	created := false
	user, err := uc.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domainerror.ErrUserNotFound) {
		user = entity.NewUser(email, "", "")
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		created = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	tokenPair, err := uc.tokenService.GenerateTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &VerifyLoginLinkOutput{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
		Created:      created,
	}, nil
}

func generateLinkToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}
