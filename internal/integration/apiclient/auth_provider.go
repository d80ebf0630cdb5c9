package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/application/adapter"
	"github.com/kakeibo/backend/internal/domain/entity"
	"github.com/kakeibo/backend/internal/integration/entrypoint/dto"
)

// AuthProvider is the identity provider as seen from the CLI. It signs in
// against the API, persists the resulting credentials, and reports every
// identity transition to its listeners.
type AuthProvider struct {
	client *Client

	mu        sync.Mutex
	listeners map[int]adapter.IdentityListener
	order     []int
	nextID    int
}

var _ adapter.IdentityProvider = (*AuthProvider)(nil)

// NewAuthProvider creates an identity provider over client.
func NewAuthProvider(client *Client) *AuthProvider {
	return &AuthProvider{
		client:    client,
		listeners: make(map[int]adapter.IdentityListener),
	}
}

// CurrentIdentity validates stored credentials with the API. Credentials the
// API rejects outright are discarded and reported as no identity; transport
// failures are returned as errors.
func (p *AuthProvider) CurrentIdentity(ctx context.Context) (*entity.Identity, error) {
	creds, err := p.client.credentials.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, nil
	}

	var me dto.UserResponse
	if err := p.client.doAuthenticated(ctx, http.MethodGet, "/auth/me", nil, &me); err != nil {
		if isInvalidCredential(err) {
			slog.Info("Stored credentials rejected, signing out locally", "email", creds.Email)
			if clearErr := p.client.credentials.Clear(); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}

	return identityFromResponse(me)
}

// OnIdentityChange registers listener for future transitions.
func (p *AuthProvider) OnIdentityChange(listener adapter.IdentityListener) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = listener
	p.order = append(p.order, id)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
		p.order = slices.DeleteFunc(p.order, func(other int) bool { return other == id })
	}
}

// Register creates a password account and signs in as it.
func (p *AuthProvider) Register(ctx context.Context, email, name, password string) (*entity.Identity, error) {
	return p.signIn(ctx, "/auth/register", dto.RegisterRequest{Email: email, Name: name, Password: password})
}

// Login signs in with email and password.
func (p *AuthProvider) Login(ctx context.Context, email, password string) (*entity.Identity, error) {
	return p.signIn(ctx, "/auth/login", dto.LoginRequest{Email: email, Password: password})
}

// LoginWithGoogle signs in with a Google ID token.
func (p *AuthProvider) LoginWithGoogle(ctx context.Context, idToken string) (*entity.Identity, error) {
	return p.signIn(ctx, "/auth/google", dto.GoogleSignInRequest{IDToken: idToken})
}

// VerifyLoginLink redeems the token from an email sign-in link.
func (p *AuthProvider) VerifyLoginLink(ctx context.Context, token string) (*entity.Identity, error) {
	return p.signIn(ctx, "/auth/email-link/verify", dto.VerifyLoginLinkRequest{Token: token})
}

// RequestLoginLink asks the API to email a sign-in link. It does not change the identity.
func (p *AuthProvider) RequestLoginLink(ctx context.Context, email string) (string, error) {
	var resp dto.MessageResponse
	if err := p.client.do(ctx, http.MethodPost, "/auth/email-link", dto.LoginLinkRequest{Email: email}, &resp); err != nil {
		return "", fmt.Errorf("failed to request sign-in link: %w", err)
	}
	return resp.Message, nil
}

// SignOut revokes the refresh token and forgets the stored credentials. The
// local credentials are removed even when the API cannot be reached.
func (p *AuthProvider) SignOut(ctx context.Context) error {
	creds, err := p.client.credentials.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		p.emit(nil)
		return nil
	}

	revokeErr := p.client.do(ctx, http.MethodPost, "/auth/logout", dto.LogoutRequest{RefreshToken: creds.RefreshToken}, nil)
	if err := p.client.credentials.Clear(); err != nil {
		return err
	}
	p.emit(nil)

	if revokeErr != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", revokeErr)
	}
	return nil
}

func (p *AuthProvider) signIn(ctx context.Context, path string, body interface{}) (*entity.Identity, error) {
	var resp dto.AuthResponse
	if err := p.client.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	identity, err := identityFromResponse(resp.User)
	if err != nil {
		return nil, err
	}

	if err := p.client.credentials.Save(&Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       identity.UserID,
		Email:        identity.Email,
		Name:         identity.Name,
	}); err != nil {
		return nil, err
	}

	p.emit(identity)
	return identity, nil
}

func (p *AuthProvider) emit(identity *entity.Identity) {
	p.mu.Lock()
	listeners := make([]adapter.IdentityListener, 0, len(p.listeners))
	for _, id := range p.order {
		if l, ok := p.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l(identity)
	}
}

func identityFromResponse(user dto.UserResponse) (*entity.Identity, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q in response: %w", user.ID, err)
	}
	return &entity.Identity{UserID: id, Email: user.Email, Name: user.Name}, nil
}
