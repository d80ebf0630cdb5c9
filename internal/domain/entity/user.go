// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a signed-in principal that owns transactions.
type User struct {
	ID            uuid.UUID
	Email         string
	Name          string
	PasswordHash  string // Empty for users that only sign in with Google or an email link
	GoogleSubject string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser creates a new User with default values.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Identity is the authenticated principal whose ID scopes all transaction access.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// SameAs reports whether two identities refer to the same principal.
// A nil identity is only the same as another nil identity.
func (i *Identity) SameAs(other *Identity) bool {
	if i == nil || other == nil {
		return i == nil && other == nil
	}
	return i.UserID == other.UserID
}
