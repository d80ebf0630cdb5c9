// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"log/slog"

	"github.com/kakeibo/backend/internal/application/adapter"
)

// SignedOutMessage is returned for every sign-out, whether or not the token was live.
const SignedOutMessage = "Signed out. Request a new login link to sign in again."

// LogoutUserInput represents the input for user logout.
type LogoutUserInput struct {
	RefreshToken string
}

// LogoutUserOutput represents the output of user logout.
type LogoutUserOutput struct {
	Message string
}

// LogoutUserUseCase revokes the refresh token a client signs out with.
type LogoutUserUseCase struct {
	tokenService adapter.TokenService
}

// NewLogoutUserUseCase creates a new LogoutUserUseCase instance.
func NewLogoutUserUseCase(tokenService adapter.TokenService) *LogoutUserUseCase {
	return &LogoutUserUseCase{
		tokenService: tokenService,
	}
}

// Execute marks the refresh token as signed out. Unknown or malformed tokens
// still succeed so a client can always clear its local session.
func (uc *LogoutUserUseCase) Execute(ctx context.Context, input LogoutUserInput) (*LogoutUserOutput, error) {
	claims, err := uc.tokenService.ValidateRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		slog.Debug("Sign-out with unusable refresh token", "error", err)
		return &LogoutUserOutput{Message: SignedOutMessage}, nil
	}

	if err := uc.tokenService.RevokeRefreshToken(ctx, input.RefreshToken, adapter.RevokeSignedOut); err != nil {
		slog.Warn("Failed to revoke refresh token on sign-out",
			"user_id", claims.UserID,
			"error", err,
		)
	} else {
		slog.Info("User signed out", "user_id", claims.UserID)
	}

	return &LogoutUserOutput{Message: SignedOutMessage}, nil
}
