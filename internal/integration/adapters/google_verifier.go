// Package adapters provides implementations for external service integrations.
package adapters

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/kakeibo/backend/internal/application/adapter"
)

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier implements adapter.IdentityVerifier for Google ID tokens.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

// NewGoogleVerifier creates a verifier that accepts tokens issued for clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// Verify checks the token signature, audience and expiry, and extracts the identity.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*adapter.ExternalIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured")
	}

	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate id token: %w", err)
	}

	return identityFromPayload(payload)
}

func identityFromPayload(payload *idtoken.Payload) (*adapter.ExternalIdentity, error) {
	if payload.Subject == "" {
		return nil, fmt.Errorf("id token has no subject")
	}

	identity := &adapter.ExternalIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	// email_verified arrives as a bool, and as a string from some issuers
	switch verified := payload.Claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = verified
	case string:
		identity.EmailVerified = verified == "true"
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}

	return identity, nil
}

var _ adapter.IdentityVerifier = (*GoogleVerifier)(nil)
