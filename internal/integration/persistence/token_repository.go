// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kakeibo/backend/internal/integration/persistence/model"
)

// TokenRepository stores issued refresh tokens and their revocation state.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error

	// FindRefreshToken returns nil, nil when the token was never stored.
	FindRefreshToken(ctx context.Context, token string) (*model.RefreshTokenModel, error)

	// RevokeRefreshToken stamps a live token with reason. Tokens already
	// revoked keep their original reason and time.
	RevokeRefreshToken(ctx context.Context, token, reason string, at time.Time) error

	// DeleteExpired removes rows that expired before cutoff and reports how many went.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

func (r *tokenRepository) SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Create(&model.RefreshTokenModel{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}).Error
}

func (r *tokenRepository) FindRefreshToken(ctx context.Context, token string) (*model.RefreshTokenModel, error) {
	var row model.RefreshTokenModel
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepository) RevokeRefreshToken(ctx context.Context, token, reason string, at time.Time) error {
	at = at.UTC()
	return r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Updates(map[string]any{"revoked_reason": reason, "revoked_at": &at}).Error
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff.UTC()).
		Delete(&model.RefreshTokenModel{})
	return result.RowsAffected, result.Error
}
