// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

// GoogleSignInInput represents the input for signing in with a Google ID token.
type GoogleSignInInput struct {
	IDToken string
}

// GoogleSignInOutput represents the output of a Google sign-in.
type GoogleSignInOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
	Created      bool
}

// GoogleSignInUseCase exchanges a verified Google ID token for a session.
type GoogleSignInUseCase struct {
	userRepo     adapter.UserRepository
	verifier     adapter.IdentityVerifier
	tokenService adapter.TokenService
}

// NewGoogleSignInUseCase creates a new GoogleSignInUseCase instance.
func NewGoogleSignInUseCase(
	userRepo adapter.UserRepository,
	verifier adapter.IdentityVerifier,
	tokenService adapter.TokenService,
) *GoogleSignInUseCase {
	return &GoogleSignInUseCase{
		userRepo:     userRepo,
		verifier:     verifier,
		tokenService: tokenService,
	}
}

// Execute verifies the ID token, then finds the user by Google subject,
// links an existing account with the same verified email, or creates one.
func (uc *GoogleSignInUseCase) Execute(ctx context.Context, input GoogleSignInInput) (*GoogleSignInOutput, error) {
	if input.IDToken == "" {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeMissingFields,
			"id token is required",
			domainerror.ErrInvalidGoogleToken,
		)
	}

	external, err := uc.verifier.Verify(ctx, input.IDToken)
	if err != nil {
		slog.Warn("Google ID token rejected", "error", err)
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidGoogleToken,
			"invalid google id token",
			domainerror.ErrInvalidGoogleToken,
		)
	}
	if !external.EmailVerified || external.Email == "" {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidGoogleToken,
			"google account email is not verified",
			domainerror.ErrInvalidGoogleToken,
		)
	}

	user, created, err := uc.resolveUser(ctx, external)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.tokenService.GenerateTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &GoogleSignInOutput{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
		Created:      created,
	}, nil
}

func (uc *GoogleSignInUseCase) resolveUser(ctx context.Context, external *adapter.ExternalIdentity) (*entity.User, bool, error) {
	user, err := uc.userRepo.FindByGoogleSubject(ctx, external.Subject)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domainerror.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to find user by google subject: %w", err)
	}

	email := normalizeEmail(external.Email)
	user, err = uc.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		user.GoogleSubject = external.Subject
		if err := uc.userRepo.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to link google account: %w", err)
		}
		slog.Info("Linked google account to existing user", "user_id", user.ID)
		return user, false, nil
	case errors.Is(err, domainerror.ErrUserNotFound):
		user = entity.NewUser(email, external.Name, "")
		user.GoogleSubject = external.Subject
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("Created user from google sign-in", "user_id", user.ID)
		return user, true, nil
	default:
		return nil, false, fmt.Errorf("failed to find user by email: %w", err)
	}
}
