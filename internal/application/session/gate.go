// Package session tracks the authenticated identity on the presentation side
// and gates every transaction store access behind it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
)

// Gate holds the current identity (or none) and fans identity transitions
// out to its subscribers in the order the provider reported them.
type Gate struct {
	provider adapter.IdentityProvider

	// notifyMu serializes transitions so subscribers observe them in provider order.
	notifyMu sync.Mutex

	mu          sync.Mutex
	identity    *entity.Identity
	version     uint64
	listeners   map[int]adapter.IdentityListener
	order       []int
	nextID      int
	activated   bool
	unsubscribe func()
}

// NewGate creates a new Gate backed by the given identity provider.
func NewGate(provider adapter.IdentityProvider) *Gate {
	return &Gate{
		provider:  provider,
		listeners: make(map[int]adapter.IdentityListener),
	}
}

// Identity returns the current identity, or nil when signed out.
func (g *Gate) Identity() *entity.Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.identity
}

// Subscribe registers a listener that is called synchronously on every
// identity transition. It returns a function that removes the listener.
func (g *Gate) Subscribe(listener adapter.IdentityListener) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	g.listeners[id] = listener
	g.order = append(g.order, id)

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.listeners, id)
		g.order = slices.DeleteFunc(g.order, func(other int) bool { return other == id })
	}
}

// Activate starts listening for provider transitions and performs the
// one-time check for a credential established before activation. The two
// are separate signals in the provider, so both are needed. Calling
// Activate again is a no-op.
func (g *Gate) Activate(ctx context.Context) error {
	g.mu.Lock()
	if g.activated {
		g.mu.Unlock()
		return nil
	}
	g.activated = true
	g.mu.Unlock()

	// Subscribe before checking so a transition during the check is not lost.
	unsubscribe := g.provider.OnIdentityChange(g.handleProviderChange)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	checkVersion := g.version
	g.mu.Unlock()

	identity, err := g.provider.CurrentIdentity(ctx)
	if err != nil {
		slog.Warn("Initial identity check failed, treating session as absent", "error", err)
		return fmt.Errorf("failed to check current identity: %w", err)
	}

	g.applyIfUnchanged(identity, checkVersion)
	return nil
}

// Deactivate stops listening to the provider.
func (g *Gate) Deactivate() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.activated = false
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SignOut revokes the credential with the provider and clears the local
// identity. Subscribers are told the session is gone even when revocation
// fails, so nothing keeps showing data for a signed-out identity.
func (g *Gate) SignOut(ctx context.Context) error {
	err := g.provider.SignOut(ctx)
	g.transition(nil)
	if err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}
	return nil
}

func (g *Gate) handleProviderChange(identity *entity.Identity) {
	g.transition(identity)
}

// applyIfUnchanged applies the initial check result unless a provider
// transition already superseded it.
func (g *Gate) applyIfUnchanged(identity *entity.Identity, version uint64) {
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()

	g.mu.Lock()
	if g.version != version {
		g.mu.Unlock()
		slog.Debug("Discarding initial identity check superseded by a provider event")
		return
	}
	g.mu.Unlock()

	g.transitionLocked(identity)
}

func (g *Gate) transition(identity *entity.Identity) {
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()
	g.transitionLocked(identity)
}

// transitionLocked must be called with notifyMu held.
func (g *Gate) transitionLocked(identity *entity.Identity) {
	g.mu.Lock()
	g.version++
	if g.identity.SameAs(identity) {
		if identity != nil {
			g.identity = identity
		}
		g.mu.Unlock()
		return
	}
	g.identity = identity

	listeners := make([]adapter.IdentityListener, 0, len(g.listeners))
	for _, id := range g.order {
		if l, ok := g.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	g.mu.Unlock()

	for _, l := range listeners {
		l(identity)
	}
}
