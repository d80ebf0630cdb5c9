// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

// GetCurrentUserUseCase resolves the identity behind an access token.
type GetCurrentUserUseCase struct {
	userRepo adapter.UserRepository
}

// NewGetCurrentUserUseCase creates a new GetCurrentUserUseCase instance.
func NewGetCurrentUserUseCase(userRepo adapter.UserRepository) *GetCurrentUserUseCase {
	return &GetCurrentUserUseCase{userRepo: userRepo}
}

// Execute returns the identity for the given user ID.
func (uc *GetCurrentUserUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Identity, error) {
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerror.ErrUserNotFound) {
			return nil, domainerror.NewAuthError(
				domainerror.ErrCodeUserNotFound,
				"user not found",
				domainerror.ErrUserNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &entity.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}
