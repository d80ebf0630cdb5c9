// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/domain/entity"
)

// UserModel represents the user table in the database.
type UserModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name          string    `gorm:"type:varchar(100);not null;default:''"`
	PasswordHash  string    `gorm:"type:varchar(255);not null;default:''"`
	GoogleSubject *string   `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts a UserModel to a domain User entity.
func (m *UserModel) ToEntity() *entity.User {
	user := &entity.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.GoogleSubject != nil {
		user.GoogleSubject = *m.GoogleSubject
	}
	return user
}

// FromEntity creates a UserModel from a domain User entity.
// An empty Google subject is stored as NULL so the unique index allows many.
func FromEntity(user *entity.User) *UserModel {
	m := &UserModel{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if user.GoogleSubject != "" {
		subject := user.GoogleSubject
		m.GoogleSubject = &subject
	}
	return m
}

// RefreshTokenModel represents the refresh_tokens table. A row with a
// revoked_at is no longer exchangeable; revoked_reason says whether it was
// rotated by a refresh or dropped by a sign-out.
type RefreshTokenModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Token         string     `gorm:"type:varchar(500);uniqueIndex;not null"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	RevokedReason string     `gorm:"type:varchar(20);not null;default:''"`
	RevokedAt     *time.Time `gorm:"index"`
	ExpiresAt     time.Time  `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the RefreshTokenModel.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
