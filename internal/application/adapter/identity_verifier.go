// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// ExternalIdentity is the subset of a verified third-party credential the
// service relies on.
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityVerifier verifies third-party sign-in credentials such as Google ID tokens.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}
