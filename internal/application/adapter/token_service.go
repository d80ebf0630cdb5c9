// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenPair represents an access and refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims represents the claims contained in a JWT token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// RevokeReason records how a refresh token was taken out of use.
type RevokeReason string

const (
	// RevokeRotated marks a token exchanged for a new pair.
	RevokeRotated RevokeReason = "rotated"
	// RevokeSignedOut marks a token dropped by an explicit sign-out.
	RevokeSignedOut RevokeReason = "signed_out"
)

// RefreshTokenRecord is the server-side state of an issued refresh token.
type RefreshTokenRecord struct {
	UserID        uuid.UUID
	ExpiresAt     time.Time
	RevokedReason RevokeReason
	RevokedAt     *time.Time
}

// Usable reports whether the token can still be exchanged at now.
func (r *RefreshTokenRecord) Usable(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.ExpiresAt)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	// GenerateTokenPair generates a new access and refresh token pair.
	GenerateTokenPair(ctx context.Context, userID uuid.UUID, email string) (*TokenPair, error)

	// ValidateAccessToken validates an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)

	// ValidateRefreshToken validates a refresh token and returns its claims.
	ValidateRefreshToken(ctx context.Context, token string) (*TokenClaims, error)

	// RevokeRefreshToken takes a refresh token out of use, recording why.
	// Revoking an already revoked token keeps the first reason.
	RevokeRefreshToken(ctx context.Context, token string, reason RevokeReason) error

	// LookupRefreshToken returns the stored record, or nil for a token never issued.
	LookupRefreshToken(ctx context.Context, token string) (*RefreshTokenRecord, error)
}
