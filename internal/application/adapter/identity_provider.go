// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/kakeibo/backend/internal/domain/entity"
)

// IdentityListener receives the identity after every provider transition.
// A nil identity means signed out.
type IdentityListener func(identity *entity.Identity)

// IdentityProvider is the presentation side's view of the identity provider.
// Sign-in itself is provider specific and reported through the listeners.
type IdentityProvider interface {
	// CurrentIdentity checks a credential established before activation,
	// e.g. one persisted by a previous run. It returns nil when there is none.
	CurrentIdentity(ctx context.Context) (*entity.Identity, error)

	// OnIdentityChange registers a listener for future transitions and
	// returns a function that removes it.
	OnIdentityChange(listener IdentityListener) (unsubscribe func())

	// SignOut revokes the credential with the provider.
	SignOut(ctx context.Context) error
}
