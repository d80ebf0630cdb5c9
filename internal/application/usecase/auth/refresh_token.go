// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/kakeibo/backend/internal/application/adapter"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

// RefreshTokenInput represents the input for token refresh.
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenOutput represents the output of token refresh.
type RefreshTokenOutput struct {
	AccessToken  string
	RefreshToken string
}

// RefreshTokenUseCase handles token refresh logic.
type RefreshTokenUseCase struct {
	tokenService adapter.TokenService
}

// NewRefreshTokenUseCase creates a new RefreshTokenUseCase instance.
func NewRefreshTokenUseCase(tokenService adapter.TokenService) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		tokenService: tokenService,
	}
}

// Execute exchanges a refresh token for a new pair and retires the old one.
// A token that was signed out or already rotated is refused with a message
// naming how to get back in.
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, input RefreshTokenInput) (*RefreshTokenOutput, error) {
	claims, err := uc.tokenService.ValidateRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, refreshRefused("refresh token is invalid or expired, request a new login link to sign in again")
	}

	record, err := uc.tokenService.LookupRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	switch {
	case record == nil || record.UserID != claims.UserID:
		return nil, refreshRefused("refresh token is not recognised, request a new login link to sign in again")
	case record.RevokedReason == adapter.RevokeSignedOut:
		return nil, refreshRefused("this session was signed out, request a new login link to sign in again")
	case record.RevokedReason == adapter.RevokeRotated:
		return nil, refreshRefused("refresh token was already exchanged, sign in again with a login link")
	case !record.Usable(time.Now()):
		return nil, refreshRefused("refresh token is invalid or expired, request a new login link to sign in again")
	}

	if err := uc.tokenService.RevokeRefreshToken(ctx, input.RefreshToken, adapter.RevokeRotated); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	tokenPair, err := uc.tokenService.GenerateTokenPair(ctx, claims.UserID, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	return &RefreshTokenOutput{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
	}, nil
}

func refreshRefused(message string) error {
	return domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, message, domainerror.ErrInvalidToken)
}
